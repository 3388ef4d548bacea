// workspace-cli 在命令行中检查服务商端点与凭证
package main

import (
	"os"

	"z-novel-workspace/cmd/workspace-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
