package model

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/config"
	"github.com/mogaika/model_browser/pack"
	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/pack/lwo"
	"github.com/mogaika/model_browser/pack/md5"
	"github.com/mogaika/model_browser/status"
	"github.com/mogaika/model_browser/utils"
	"github.com/mogaika/model_browser/vfs"
)

// Loader decodes manifest models out of a directory and keeps the composed
// result per name. Models are immutable once cached.
type Loader struct {
	dir      vfs.Directory
	manifest *config.Manifest
	exlog    *utils.Logger

	mu    sync.Mutex
	cache map[string]*Model
}

func NewLoader(dir vfs.Directory, manifest *config.Manifest, exlog *utils.Logger) *Loader {
	if manifest == nil {
		manifest = &config.Manifest{}
	}
	return &Loader{
		dir:      dir,
		manifest: manifest,
		exlog:    exlog,
		cache:    make(map[string]*Model),
	}
}

// Names lists manifest models first, then decodable files of the directory
// not already referenced by the manifest.
func (l *Loader) Names() ([]string, error) {
	names := l.manifest.Names()

	referenced := make(map[string]bool)
	for _, me := range l.manifest.Models {
		referenced[me.Mesh] = true
		for _, a := range me.Animations {
			referenced[a.File] = true
		}
	}

	files, err := l.dir.List()
	if err != nil {
		return nil, errors.Wrapf(err, "[loader] Cannot list directory")
	}
	for _, f := range files {
		// animations are only reachable through a manifest entry
		if referenced[f] || !pack.HasHandler(f) || strings.EqualFold(filepath.Ext(f), ".md5anim") {
			continue
		}
		names = append(names, f)
	}
	return names, nil
}

// Model returns the cached model or decodes it. A name that is not in the
// manifest is treated as a single mesh file of the directory.
func (l *Loader) Model(name string) (*Model, error) {
	l.mu.Lock()
	if m, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	entry, ok := l.manifest.Model(name)
	if !ok {
		entry = &config.ModelEntry{Name: name, Mesh: name}
	}

	m, err := l.load(entry)
	if err != nil {
		status.Error("Failed to load model '%s': %v", name, err)
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[name]; ok {
		// a concurrent load finished first
		return cached, nil
	}
	l.cache[name] = m
	status.Info("Loaded model '%s': %d vertices, %d triangles", name, m.VertexCount(), m.TriangleCount())
	return m, nil
}

type loadResult struct {
	inst interface{}
	err  error
}

// decodeAll reads and decodes every file in its own goroutine and waits for all of them.
func (l *Loader) decodeAll(name string, files []string) []loadResult {
	results := make([]loadResult, len(files))
	var done int32

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			inst, err := pack.GetInstanceHandler(l.dir, f, l.exlog)
			results[i] = loadResult{inst: inst, err: err}
			if err == nil {
				n := atomic.AddInt32(&done, 1)
				status.Progress(float32(n)/float32(len(files)), "'%s': decoded '%s'", name, f)
			}
		}(i, f)
	}
	wg.Wait()

	return results
}

func (l *Loader) load(entry *config.ModelEntry) (*Model, error) {
	files := make([]string, 0, 1+len(entry.Animations))
	files = append(files, entry.Mesh)
	for _, a := range entry.Animations {
		files = append(files, a.File)
	}

	log.Printf("[loader] Loading '%s' from %d files", entry.Name, len(files))
	results := l.decodeAll(entry.Name, files)
	for i, r := range results {
		if r.err != nil {
			return nil, errors.Wrapf(r.err, "[loader] '%s'", files[i])
		}
	}

	switch mesh := results[0].inst.(type) {
	case *lwo.Object:
		if len(entry.Animations) != 0 {
			l.exlog.Printf("[loader] '%s': animations ignored for lwo mesh", entry.Name)
		}
		return FromLWO(entry.Name, mesh, l.exlog)
	case *md5.MeshFile:
		anims := make([]NamedAnim, len(entry.Animations))
		for i, a := range entry.Animations {
			anim, ok := results[i+1].inst.(*md5.AnimFile)
			if !ok {
				return nil, asseterr.Unsupported("[loader] '%s' is not an animation", a.File)
			}
			anims[i] = NamedAnim{Name: a.Name, Anim: anim}
		}
		return FromMD5(entry.Name, mesh, anims, entry.Materials)
	default:
		return nil, asseterr.Unsupported("[loader] '%s' is not a mesh", entry.Mesh)
	}
}
