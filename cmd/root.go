package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "searchfusion"}

	root.AddCommand(serveCMD(), searchCMD(), sweepCMD(), migrateCMD())
	_ = root.Execute()
}
