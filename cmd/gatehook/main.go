// Command gatehook runs the Discord-to-webhook bridge: it connects to the
// Discord gateway, classifies and filters inbound events, forwards allowed
// ones to a configured HTTP webhook, and executes any back-actions the
// webhook's response asks for.
package main

func main() {
	Execute()
}
