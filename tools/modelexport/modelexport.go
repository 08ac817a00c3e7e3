package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/config"
	"github.com/mogaika/model_browser/pack"
	"github.com/mogaika/model_browser/pack/model"
	"github.com/mogaika/model_browser/utils"
	"github.com/mogaika/model_browser/vfs"
)

func export(loader *model.Loader, d vfs.Directory, modelName, fileName, format string, exlog *utils.Logger) ([]byte, error) {
	var buf bytes.Buffer

	if fileName != "" {
		if format != "dump" && format != "json" {
			return nil, errors.Errorf("Format %q is not available for raw files", format)
		}
		inst, err := pack.GetInstanceHandler(d, fileName, exlog)
		if err != nil {
			return nil, err
		}
		if format == "dump" {
			utils.Fdump(&buf, inst)
			return buf.Bytes(), nil
		}
		return json.MarshalIndent(inst, "", "  ")
	}

	m, err := loader.Model(modelName)
	if err != nil {
		return nil, err
	}

	switch format {
	case "json":
		return json.MarshalIndent(m, "", "  ")
	case "glb":
		err = m.WriteGLB(&buf)
	case "obj":
		err = m.WriteOBJ(&buf)
	case "dump":
		utils.Fdump(&buf, m)
	default:
		err = errors.Errorf("Unknown format %q", format)
	}
	return buf.Bytes(), err
}

func main() {
	var dir, manifestPath, modelName, fileName, format, out string
	var verbose bool
	flag.StringVar(&dir, "dir", ".", "Path to directory with model files")
	flag.StringVar(&manifestPath, "config", "", "Path to models manifest (default <dir>/"+config.DefaultManifestName+")")
	flag.StringVar(&modelName, "model", "", "Manifest model name or mesh file to compose")
	flag.StringVar(&fileName, "file", "", "Single file to decode without composing")
	flag.StringVar(&format, "format", "json", "json|glb|obj|dump")
	flag.StringVar(&out, "o", "", "Output file (default stdout)")
	flag.BoolVar(&verbose, "v", false, "Log decoder diagnostics to stderr")
	flag.Parse()

	if modelName == "" && fileName == "" {
		flag.PrintDefaults()
		os.Exit(2)
	}

	manifest, err := config.LoadForDirectory(dir, manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	var exlog *utils.Logger
	if verbose {
		exlog = utils.NewLogger(os.Stderr)
	}

	d := vfs.NewDirectoryDriver(dir)
	data, err := export(model.NewLoader(d, manifest, exlog), d, modelName, fileName, format, exlog)
	if err != nil {
		log.Fatal(err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		log.Fatal(err)
	}
}
