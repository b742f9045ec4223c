// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/modbreeze/modbreeze/cmd/modbreeze"

func main() {
	cmd.Execute()
}
