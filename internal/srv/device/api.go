package device

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/longpress/apimodel"
	"github.com/jypelle/longpress/internal/srv/config"
	"github.com/jypelle/longpress/internal/srv/event"
	"github.com/sirupsen/logrus"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"
)

// StatusFunc returns the current button status.
type StatusFunc func() apimodel.PressStatus

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	param  config.ApiParam
	status StatusFunc
}

func NewApi(param config.ApiParam, status StatusFunc) *Api {
	api := Api{
		param:        param,
		status:       status,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						ErrorMessageAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
					}
				}()

				// Check API Key
				if param.ApiKey != "" && r.Header.Get("x-api-key") != param.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Method, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/press",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(api.status()); err != nil {
				logrus.Warnf("Unable to encode press status: %v", err)
			}
		}).Methods("GET")
	api.apiRouter.HandleFunc("/display/clear",
		func(w http.ResponseWriter, r *http.Request) {
			api.send(w, r, event.ApiEventDisplayClearData{})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/button/press",
		func(w http.ResponseWriter, r *http.Request) {
			api.send(w, r, event.ApiEventButtonData{Pressed: true})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/button/release",
		func(w http.ResponseWriter, r *http.Request) {
			api.send(w, r, event.ApiEventButtonData{Pressed: false})
		}).Methods("POST")

	headersOk := handlers.AllowedHeaders([]string{"x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(param.Port, 10),
		Handler:      api.Handler(handlers.CORS(originsOk, headersOk, methodsOk)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &api
}

// Handler wraps the router with the given middlewares and compression.
func (d *Api) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = d.router
	for _, middleware := range middlewares {
		h = middleware(h)
	}
	return handlers.CompressHandler(h)
}

// send hands data to the event loop and waits for its answer.
func (d *Api) send(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan error, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-r.Context().Done():
		return
	}

	var err error
	select {
	case err = <-result:
	case <-r.Context().Done():
		return
	}

	if err == nil {
		ErrorStatusAction(w, r, http.StatusOK)
	} else {
		ErrorMessageAction(w, err.Error(), http.StatusForbidden)
	}
}

func (d *Api) Start() {
	logrus.Infof("Start api device on %s", d.server.Addr)

	go func() {
		err := d.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to stop api server: %v", err)
	}
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func ErrorMessageAction(w http.ResponseWriter, message string, status int) {
	apimodel.NewErrorMessage(status, message).Send(w)
}
