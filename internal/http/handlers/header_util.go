// README: Alert headers that tell API clients what a request did.
package handlers

import "net/http"

// HeaderUtil writes X-{app}-alert, X-{app}-error and X-{app}-params headers.
type HeaderUtil struct {
	appName string
}

func NewHeaderUtil(appName string) HeaderUtil {
	return HeaderUtil{appName: appName}
}

func (h HeaderUtil) AlertHeader() string  { return "X-" + h.appName + "-alert" }
func (h HeaderUtil) ErrorHeader() string  { return "X-" + h.appName + "-error" }
func (h HeaderUtil) ParamsHeader() string { return "X-" + h.appName + "-params" }

func (h HeaderUtil) Alert(header http.Header, message, param string) {
	header.Set(h.AlertHeader(), message)
	header.Set(h.ParamsHeader(), param)
}

func (h HeaderUtil) EntityCreationAlert(header http.Header, entityName, param string) {
	h.Alert(header, h.appName+"."+entityName+".created", param)
}

func (h HeaderUtil) EntityUpdateAlert(header http.Header, entityName, param string) {
	h.Alert(header, h.appName+"."+entityName+".updated", param)
}

func (h HeaderUtil) EntityDeletionAlert(header http.Header, entityName, param string) {
	h.Alert(header, h.appName+"."+entityName+".deleted", param)
}

func (h HeaderUtil) FailureAlert(header http.Header, entityName, errorKey string) {
	header.Set(h.ErrorHeader(), "error."+errorKey)
	header.Set(h.ParamsHeader(), entityName)
}

// ExposedHeaders lists the response headers browsers must be allowed to read.
func (h HeaderUtil) ExposedHeaders() []string {
	return []string{
		"Authorization",
		"Link",
		"Location",
		"X-Total-Count",
		h.AlertHeader(),
		h.ErrorHeader(),
		h.ParamsHeader(),
	}
}
