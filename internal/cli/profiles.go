package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/logger"
	"github.com/artemshloyda/imagecompressor/internal/profiles"
)

// newProfilesCmd создаёт команду profiles для управления профилями сжатия.
func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Управление профилями сжатия",
		Long: `Профиль - именованный набор настроек: формат, качество и размер.
Встроенные профили: Web Optimized, Social Media, High Quality.
Пользовательские профили хранятся в JSON файле (--profiles-file).`,
	}

	cmd.AddCommand(newProfilesListCmd(a))
	cmd.AddCommand(newProfilesShowCmd(a))
	cmd.AddCommand(newProfilesSaveCmd(a))
	cmd.AddCommand(newProfilesDeleteCmd(a))

	return cmd
}

// openProfiles загружает профили из файла, указанного в конфигурации.
func (a *app) openProfiles() *profiles.Store {
	store := profiles.NewStore(a.cfg.ProfilesPath, logger.L())
	store.Load()
	return store
}

func newProfilesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Список профилей",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			store := a.openProfiles()

			fmt.Fprintln(a.stdout, titleStyle.Render("📚 Профили ("+store.Path()+")"))
			for _, name := range store.Names() {
				p, ok := store.Get(name)
				if !ok {
					fmt.Fprintf(a.stdout, "  %s %s\n", valueStyle.Render(name), keyStyle.Render("(текущие настройки)"))
					continue
				}
				fmt.Fprintf(a.stdout, "  %s %s\n", valueStyle.Render(name), keyStyle.Render(describeProfile(p)))
			}
		},
	}
}

func newProfilesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <имя>",
		Short: "Показать настройки профиля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.openProfiles()
			p, ok := store.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", profiles.ErrNotFound, args[0])
			}

			fmt.Fprintln(a.stdout, titleStyle.Render("📄 "+args[0]))
			rows := []kv{
				{"Формат", string(p.Format)},
				{"Качество", fmt.Sprint(p.Quality)},
				{"Масштаб", fmt.Sprint(p.Resize)},
			}
			if p.Resize {
				rows = append(rows, kv{"Размер", fmt.Sprintf("%dx%d", p.Width, p.Height)})
			}
			writeTable(a.stdout, rows)
			return nil
		},
	}
}

func newProfilesSaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <имя>",
		Short: "Сохранить настройки из флагов как профиль",
		Long: `Сохраняет формат, качество и размер, собранные из конфигурации и флагов.

Пример:
  imagecompressor profiles save "Thumbs" -f png --width 256 --height 256`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.openProfiles()
			if err := store.Save(args[0], &a.cfg.Settings); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, okStyle.Render("✅ Профиль сохранён: "+args[0]))
			return nil
		},
	}

	addSettingsFlags(cmd, &a.opts)
	return cmd
}

func newProfilesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <имя>",
		Short: "Удалить профиль",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.openProfiles()
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, okStyle.Render("🗑️  Профиль удалён: "+args[0]))
			return nil
		},
	}
}

func describeProfile(p profiles.Profile) string {
	s := fmt.Sprintf("%s, качество %d", p.Format, p.Quality)
	if p.Resize {
		s += fmt.Sprintf(", %dx%d", p.Width, p.Height)
	}
	return s
}
