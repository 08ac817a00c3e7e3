package main

import (
	"flag"
	"log"

	"github.com/mogaika/model_browser/config"
	"github.com/mogaika/model_browser/pack/model"
	"github.com/mogaika/model_browser/utils"
	"github.com/mogaika/model_browser/vfs"
	"github.com/mogaika/model_browser/web"
)

func main() {
	var addr, dir, manifestPath, encoding string
	var verbose bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to directory with model files")
	flag.StringVar(&manifestPath, "config", "", "Path to models manifest (default <dir>/"+config.DefaultManifestName+")")
	flag.StringVar(&encoding, "encoding", "", "Charmap of names inside binary models, e.g. 'Windows 1252'")
	flag.BoolVar(&verbose, "v", false, "Log decoder diagnostics")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	manifest, err := config.LoadForDirectory(dir, manifestPath)
	if err != nil {
		log.Fatal(err)
	}
	// flag wins over the manifest setting
	if err := config.SetEncoding(encoding); err != nil {
		log.Fatalf("%v, known encodings: %q", err, config.ListEncodings())
	}

	var exlog *utils.Logger
	if verbose {
		exlog = utils.NewLogger(log.Writer())
	}

	d := vfs.NewDirectoryDriver(dir)
	if err := web.StartServer(addr, d, model.NewLoader(d, manifest, exlog)); err != nil {
		log.Fatal(err)
	}
}
