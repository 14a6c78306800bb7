package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saltyjared/banking-system/internal/config"
)

// exampleScript is written next to the config by init.
const exampleScript = `# timestamp,operation,args...
1,create_account,A
2,create_account,B
3,deposit,A,2000
4,deposit,B,1200
5,transfer,B,A,200
6,pay,A,200
7,get_payment_status,A,payment1
8,top_spenders,2
9,merge_accounts,A,B
12,get_balance,A,10
86400010,get_balance,A,86400007
86400011,get_payment_status,A,payment1
`

const exampleFile = "example.csv"

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default config and an example operations script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(out io.Writer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	if err := config.Save(cfgPath, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, exampleFile), []byte(exampleScript), 0o644); err != nil {
		return fmt.Errorf("writing example script: %w", err)
	}

	fmt.Fprintf(out, "Initialized bankledger in %s\n", dir)
	return nil
}
