// Command imagecompressor - пакетное сжатие и конвертация изображений.
package main

import (
	"os"

	"github.com/artemshloyda/imagecompressor/internal/cli"
	"github.com/artemshloyda/imagecompressor/internal/logger"
)

func main() {
	os.Exit(run())
}

// run отделён от main, чтобы RecoverFatal успел отработать до os.Exit.
func run() int {
	defer logger.RecoverFatal()
	return cli.Execute()
}
