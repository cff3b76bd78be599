// Command cqhttp 运行 OneBot 事件接收与分发
package main

import (
	"fmt"
	"os"

	"github.com/Lichas/cqhttp-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
