package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagecompressor/internal/logger"
	"github.com/artemshloyda/imagecompressor/internal/preview"
)

// newPreviewCmd создаёт команду preview: сведения о файле и уменьшенная копия.
func newPreviewCmd(a *app) *cobra.Command {
	var thumbPath string

	cmd := &cobra.Command{
		Use:   "preview <файл>",
		Short: "Показать сведения об изображении и его метаданные",
		Long: `Открывает изображение, выводит размер, формат и EXIF теги.
С флагом --thumb сохраняет уменьшенную копию высотой 300 пикселей в PNG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(args[0], thumbPath)
		},
	}

	cmd.Flags().StringVar(&thumbPath, "thumb", "", "Сохранить уменьшенную копию в PNG файл")
	return cmd
}

func (a *app) runPreview(path, thumbPath string) error {
	p := preview.New()
	defer p.Close()

	info, err := p.Open(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, titleStyle.Render("🖼️  "+info.Name))
	writeTable(a.stdout, []kv{
		{"Размер", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"Формат", info.Format},
		{"MIME", info.MIME},
		{"Файл", preview.FormatBytes(info.Size)},
	})

	fields, err := preview.Metadata(path)
	if err != nil {
		// Частичный список всё равно полезен
		logger.Warn("метаданные прочитаны не полностью", "path", path, "error", err)
		fmt.Fprintln(a.stdout, warnStyle.Render("⚠️  "+err.Error()))
	}
	if len(fields) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, titleStyle.Render("📋 Метаданные"))
		rows := make([]kv, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, kv{f.Key, f.Value})
		}
		writeTable(a.stdout, rows)
	}

	if thumbPath == "" {
		return nil
	}

	f, err := os.Create(thumbPath)
	if err != nil {
		return fmt.Errorf("не удалось создать %s: %w", thumbPath, err)
	}
	if err := p.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	b := p.Image().Bounds()
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, okStyle.Render("✅ Миниатюра "+strconv.Itoa(b.Dx())+"x"+strconv.Itoa(b.Dy())+" сохранена: "+thumbPath))
	return nil
}
