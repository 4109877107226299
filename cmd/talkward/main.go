// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package main

import "github.com/hbak/talkward/cmd/talkward/commands"

func main() {
	commands.Execute()
}
