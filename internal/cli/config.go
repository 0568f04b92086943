package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/config"
)

// ExampleConfigName - имя файла, который создаёт config init.
const ExampleConfigName = "imagecompressor.yaml"

// newConfigCmd создаёт команду config.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [путь]",
		Short: "Создать пример imagecompressor.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ExampleConfigName
			if len(args) == 1 {
				path = args[0]
			}
			if err := writeExampleConfig(path, force); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, okStyle.Render("✅ Создан "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Перезаписать существующий файл")

	cmd.AddCommand(initCmd)
	return cmd
}

func writeExampleConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s уже существует (используйте --force)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, []byte(config.GenerateExampleConfig()), 0644)
}
