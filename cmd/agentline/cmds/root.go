package cmds

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/agentline/pkg/config"
	"github.com/go-go-golems/agentline/pkg/labeljs"
	"github.com/go-go-golems/agentline/pkg/view"
)

func AddRootFlags(root *cobra.Command) {
	root.PersistentFlags().String("config", "", "Path to .agentline.yaml (default: current directory)")
}

func AddCommands(root *cobra.Command) error {
	root.AddCommand(newReplayCommand())
	root.AddCommand(newTailCommand())
	root.AddCommand(newSessionsCommand())
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.File, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, errors.Wrap(err, "read --config")
	}
	if path != "" {
		return config.LoadFromFile(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getwd")
	}
	return config.LoadOptional(config.DefaultPath(cwd))
}

// controllerOptions builds the view controller options a command shares:
// the custom-tool labeler and the minimum-visible floor.
func controllerOptions(cfg *config.File) ([]view.Option, error) {
	opts := []view.Option{view.WithMinVisible(cfg.MinVisible())}
	if cfg.LabelScript != "" {
		mod, err := labeljs.LoadFromFile(cfg.LabelScript)
		if err != nil {
			return nil, errors.Wrap(err, "load label script")
		}
		opts = append(opts, view.WithLabeler(mod))
	}
	return opts, nil
}
