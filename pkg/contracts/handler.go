package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every service's HTTP layer.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers lets one binary mount several services on the same router.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}
