// Command shockwaved runs the shockwave HTTP engine as a standalone server.
package main

func main() {
	Execute()
}
