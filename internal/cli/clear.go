package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all items and purchases",
	RunE:  runClear,
}

var (
	clearRemote bool
	clearYes    bool
)

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearRemote, "remote", false, "Clear the database instead of the document")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target := "document"
	if clearRemote {
		target = "database"
	}

	if !clearYes {
		fmt.Fprintf(cmd.OutOrStdout(), "This removes every item and purchase from the %s. Continue? [y/N] ", target)
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if clearRemote {
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := st.Wipe(); err != nil {
			return err
		}
	} else {
		if err := openDocument(cfg).Clear(); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared the %s\n", target)
	return nil
}
