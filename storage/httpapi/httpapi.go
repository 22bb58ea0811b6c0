// Package httpapi exposes the bound storage capabilities over HTTP:
//
//	GET    /storage/{instance}/objects?prefix=   list objects of a named ServerStorage
//	POST   /storage/{instance}/objects/{key}     store the request body
//	GET    /storage/{instance}/objects/{key}     read an object
//	DELETE /storage/{instance}/objects/{key}     delete an object
//	GET    /storage/presign?storageType=&key=    presign through ClientStorage
//	POST   /storage/presign                      same, from a JSON body
//	GET    /storage/{instance}/signed/{key}      read through a presigned URL
//	PUT    /storage/{instance}/signed/{key}      write through a presigned URL
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/km-arc/go-capability/framework/container"
	gohttp "github.com/km-arc/go-capability/framework/http"
	"github.com/km-arc/go-capability/framework/routing"
	"github.com/km-arc/go-capability/framework/validation"
	"github.com/km-arc/go-capability/storage"
)

var presignRules = validation.Rules{
	"storageType": "required|max:255",
	"key":         "required|max:1024",
	"method":      "nullable|in:GET,PUT,get,put",
	"ttl":         "nullable|integer",
}

// Handler resolves storage capabilities from a container per request, so
// it can be mounted before binding has happened.
type Handler struct {
	c container.Scope
}

// Mount registers the storage routes on r.
func Mount(r *routing.Router, c container.Scope) {
	h := &Handler{c: c}
	r.Prefix("/storage", func(s *routing.Router) {
		s.Get("/presign", h.presign)
		s.Post("/presign", h.presignJSON)
		s.Get("/{instance}/objects", h.list)
		s.Post("/{instance}/objects/{key}", h.put)
		s.Get("/{instance}/objects/{key}", h.get)
		s.Delete("/{instance}/objects/{key}", h.delete)
		s.Get("/{instance}/signed/{key}", h.signed)
		s.Put("/{instance}/signed/{key}", h.signed)
	})
}

func (h *Handler) server(req *gohttp.Request) (storage.ServerStorage, error) {
	return container.ResolveNamed[storage.ServerStorage](h.c, string(storage.ServerStorageType), req.RouteParam("instance"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	s, err := h.server(req)
	if err != nil {
		res.Fail(err)
		return
	}
	objects, err := s.List(r.Context(), req.Query("prefix"))
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(objects)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	s, err := h.server(req)
	if err != nil {
		res.Fail(err)
		return
	}
	write(req, res, s, req.RouteParam("key"))
}

func write(req *gohttp.Request, res *gohttp.Response, s storage.ServerStorage, key string) {
	body, err := req.Body()
	if err != nil {
		res.Fail(err)
		return
	}
	obj, err := s.Put(req.Context(), key, body, req.ContentType())
	if err != nil {
		fail(res, err)
		return
	}
	res.Created(obj)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	s, err := h.server(req)
	if err != nil {
		res.Fail(err)
		return
	}
	read(w, r, s, req.RouteParam("key"))
}

func read(w http.ResponseWriter, r *http.Request, s storage.ServerStorage, key string) {
	data, obj, err := s.Get(r.Context(), key)
	if err != nil {
		fail(gohttp.NewResponse(w), err)
		return
	}

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("ETag", `"`+obj.ETag+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	s, err := h.server(req)
	if err != nil {
		res.Fail(err)
		return
	}
	if err := s.Delete(r.Context(), req.RouteParam("key")); err != nil {
		fail(res, err)
		return
	}
	res.NoContent()
}

// signed serves a presigned URL: the token must have been issued for this
// key and method by the ClientStorage named in storageType.
func (h *Handler) signed(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	client, err := container.Resolve[storage.ClientStorage](h.c, string(storage.ClientStorageType))
	if err != nil {
		res.Fail(err)
		return
	}
	verifier, ok := client.(storage.URLVerifier)
	if !ok {
		fail(res, storage.ErrInvalidSignature)
		return
	}
	key := req.RouteParam("key")
	cfg := storage.URLConfig{StorageType: req.Query("storageType"), Key: key, Method: r.Method}
	if err := verifier.VerifyURL(cfg, req.Query("token")); err != nil {
		fail(res, err)
		return
	}

	s, err := h.server(req)
	if err != nil {
		res.Fail(err)
		return
	}
	if r.Method == http.MethodPut {
		write(req, res, s, key)
		return
	}
	read(w, r, s, key)
}

// fail maps storage errors onto status codes before falling back to
// Response.Fail.
func fail(res *gohttp.Response, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		res.NotFound(err.Error())
	case errors.Is(err, storage.ErrTooLarge):
		res.Error(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storage.ErrInvalidSignature):
		res.Error(http.StatusForbidden, err.Error())
	default:
		res.Fail(err)
	}
}

type presignRequest struct {
	StorageType string `json:"storageType"`
	Key         string `json:"key"`
	Method      string `json:"method"`
	TTL         int    `json:"ttl"`
}

func (p presignRequest) fields() map[string]string {
	out := map[string]string{
		"storageType": p.StorageType,
		"key":         p.Key,
		"method":      p.Method,
	}
	if p.TTL != 0 {
		out["ttl"] = strconv.Itoa(p.TTL)
	}
	return out
}

func (h *Handler) presign(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	ttl, _ := strconv.Atoi(req.Query("ttl", "0"))
	h.sign(w, r, presignRequest{
		StorageType: req.Query("storageType"),
		Key:         req.Query("key"),
		Method:      req.Query("method"),
		TTL:         ttl,
	}, req.QueryAll())
}

func (h *Handler) presignJSON(w http.ResponseWriter, r *http.Request) {
	var in presignRequest
	if err := gohttp.NewRequest(r).Bind(&in); err != nil {
		gohttp.NewResponse(w).Fail(err)
		return
	}
	h.sign(w, r, in, in.fields())
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request, in presignRequest, fields map[string]string) {
	res := gohttp.NewResponse(w)

	v := validation.Make(fields, presignRules)
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	client, err := container.Resolve[storage.ClientStorage](h.c, string(storage.ClientStorageType))
	if err != nil {
		res.Fail(err)
		return
	}

	url, err := client.PresignURL(r.Context(), storage.URLConfig{
		StorageType: in.StorageType,
		Key:         in.Key,
		Method:      in.Method,
		TTL:         time.Duration(in.TTL) * time.Second,
	})
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(url)
}
