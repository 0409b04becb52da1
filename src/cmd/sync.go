package cmd

import (
	"github.com/logsync/indexer/src/sync"
	"github.com/logsync/indexer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Follow imported blocks and index their event logs into the database",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := sync.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		<-ctx.Done()

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("sync-cmd")
		log.Debug("Finished sync command")
		return
	},
}
