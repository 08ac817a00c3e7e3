package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/model_browser/pack/model"
	"github.com/mogaika/model_browser/vfs"
)

var (
	ServerDirectory vfs.Directory
	ServerLoader    *model.Loader
)

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/models", HandlerAjaxModels).Methods("GET")
	r.HandleFunc("/json/model/{name}", HandlerAjaxModel).Methods("GET")
	r.HandleFunc("/json/file/{file}", HandlerAjaxFile).Methods("GET")
	r.HandleFunc("/json/status", HandlerAjaxStatus).Methods("GET")
	r.HandleFunc("/export/model/{name}/{format}", HandlerExportModel).Methods("GET")
	r.HandleFunc("/dump/file/{file}", HandlerDumpFile).Methods("GET")
	r.HandleFunc("/ws/status", HandlerStatusWebsocket)
	return r
}

func StartServer(addr string, d vfs.Directory, loader *model.Loader) error {
	ServerDirectory = d
	ServerLoader = loader

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
