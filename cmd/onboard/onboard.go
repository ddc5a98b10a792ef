package onboard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanreadbooks/codemaster/config"
)

var OnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize codemaster configuration.",
	Long:  "Initialize codemaster configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetWorkspaceConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}

		err = bootstrapConfig(configPath, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to run onboard: %w", err)
		}

		return nil
	},
}

func bootstrapConfig(configPath string, in io.Reader, out io.Writer) error {
	// check file exists, ask user if they want to overwrite
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		fmt.Fprintf(out, "Config file already exists at %s, do you want to overwrite it? (y/n): ", configPath)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.TrimSpace(answer); a != "y" && a != "Y" {
			return nil
		}
	}

	if err := config.WriteConfig(configPath, config.BootstrapConfig()); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration written to %s\n", configPath)
	return nil
}
