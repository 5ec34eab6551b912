package main

import "github.com/killallgit/reelgen/cmd"

// @title           Reel Generator API
// @version         1.0.0
// @description     Asynchronous short-video reel generation with job status polling
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/reelgen
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8000
// @BasePath        /
// @schemes         http
func main() {
	cmd.Execute()
}
