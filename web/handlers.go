package web

import (
	"bytes"
	"io/fs"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/pack"
	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/status"
	"github.com/mogaika/model_browser/utils"
	"github.com/mogaika/model_browser/webutils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case asseterr.Is(err, asseterr.ErrTruncatedInput),
		asseterr.Is(err, asseterr.ErrUnsupportedFormat),
		asseterr.Is(err, asseterr.ErrMissingLayer),
		asseterr.Is(err, asseterr.ErrMissingReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	webutils.WriteErrorStatus(w, errorStatus(err), err)
}

func HandlerAjaxModels(w http.ResponseWriter, r *http.Request) {
	if names, err := ServerLoader.Names(); err != nil {
		writeError(w, err)
	} else {
		webutils.WriteJson(w, names)
	}
}

func HandlerAjaxModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, err := ServerLoader.Model(name)
	if err != nil {
		log.Printf("[web] Error loading model '%s': %v", name, err)
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("download") != "" {
		webutils.WriteJsonFile(w, m, name)
	} else {
		webutils.WriteJson(w, m)
	}
}

func HandlerAjaxFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file, nil)
	if err != nil {
		log.Printf("[web] Error decoding file '%s': %v", file, err)
		status.Error("Failed to decode '%s': %v", file, err)
		writeError(w, err)
		return
	}
	webutils.WriteJson(w, data)
}

func HandlerDumpFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]

	var logBuf bytes.Buffer
	data, err := pack.GetInstanceHandler(ServerDirectory, file, utils.NewLogger(&logBuf))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	webutils.WriteResult(w, logBuf.Bytes())
	utils.Fdump(w, data)
}

func HandlerAjaxStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if last := status.Last(); last != nil {
		webutils.WriteResult(w, last)
	} else {
		webutils.WriteResult(w, []byte("null"))
	}
}

func HandlerExportModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, format := vars["name"], vars["format"]

	m, err := ServerLoader.Model(name)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "glb":
		err = m.WriteGLB(&buf)
		contentType = "model/gltf-binary"
	case "obj":
		err = m.WriteOBJ(&buf)
		contentType = "text/plain; charset=utf-8"
	default:
		webutils.WriteErrorStatus(w, http.StatusBadRequest, errors.Errorf("Unknown export format '%s'", format))
		return
	}
	if err != nil {
		writeError(w, errors.Wrapf(err, "Failed to export '%s' as %s", name, format))
		return
	}

	status.Info("Exported '%s' as %s", name, format)
	webutils.WriteFile(w, &buf, m.Name+"."+format, contentType)
}

func HandlerStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] Websocket upgrade failed: %v", err)
		return
	}
	status.NewClient(conn)
}
