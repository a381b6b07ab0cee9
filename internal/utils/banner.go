/*
 This file has implementation of the main banner for the tool. It is used in cmd/root.go
*/
package utils

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const bannerArt = `

     _      _  __ _                _ _ _
  __| |_ __(_)/ _| |_ __ _ _   _ __| (_) |_
 / _' | '__| | |_| __/ _' | | | / _' | | __|
| (_| | |  | |  _| || (_| | |_| | (_| | | |_
 \__,_|_|  |_|_|  \__\__,_|\__,_|\__,_|_|\__|

`

func DisplayBanner() {
	color.Magenta(strings.TrimSpace(bannerArt))
	fmt.Println()
	fmt.Println("OCI IAM Policy Drift Auditing Tool")
	fmt.Println("----------------------------------")
}
