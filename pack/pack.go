// Package pack routes asset files to their decoders by file extension.
package pack

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/utils"
	"github.com/mogaika/model_browser/vfs"
)

type FileLoader func(name string, data []byte, exlog *utils.Logger) (interface{}, error)

var (
	gHandlers      = make(map[string]FileLoader, 0)
	gHandlersMutex sync.RWMutex
)

func SetHandler(format string, ldr FileLoader) {
	gHandlersMutex.Lock()
	defer gHandlersMutex.Unlock()
	gHandlers[strings.ToUpper(format)] = ldr
}

// HasHandler reports whether a decoder is registered for the file extension.
func HasHandler(name string) bool {
	gHandlersMutex.RLock()
	defer gHandlersMutex.RUnlock()
	_, found := gHandlers[strings.ToUpper(filepath.Ext(name))]
	return found
}

func CallHandler(name string, data []byte, exlog *utils.Logger) (interface{}, error) {
	ext := strings.ToUpper(filepath.Ext(name))

	gHandlersMutex.RLock()
	h, found := gHandlers[ext]
	gHandlersMutex.RUnlock()

	if !found {
		return nil, asseterr.Unsupported("[pack] Cannot find handler for '%s' extension", ext)
	}
	return h(name, data, exlog)
}

func GetInstanceHandler(d vfs.Directory, fileName string, exlog *utils.Logger) (interface{}, error) {
	data, err := vfs.ReadFile(d, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}

	inst, err := CallHandler(fileName, data, exlog)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Handler error")
	}
	return inst, nil
}
