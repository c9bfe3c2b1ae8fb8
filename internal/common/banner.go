package common

import (
	"fmt"
	"strings"
)

// PrintBanner displays the application name and version at startup
func PrintBanner(version string) {
	line := strings.Repeat("-", 50)
	fmt.Println(line)
	fmt.Printf("  Orchids Monitor  %s\n", version)
	fmt.Println(line)
}
