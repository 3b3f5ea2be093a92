package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/represent"
)

// routes are the five handlers of one catalog resource.
type routes struct {
	list   http.HandlerFunc
	get    http.HandlerFunc
	create http.HandlerFunc
	update http.HandlerFunc
	remove http.HandlerFunc
}

// catalogRoutes wires every resource to its catalog operations and shapes.
func (h *Handlers) catalogRoutes() map[string]routes {
	svc := h.catalog
	return map[string]routes{
		model.ResourceClasses: {
			list:   listHandler(h, svc.ListClasses, represent.ClassSummary),
			get:    getHandler(h, svc.GetClass, represent.ClassDetail),
			create: createHandler(h, svc.CreateClass, represent.ClassDetail),
			update: updateHandler(h, svc.UpdateClass, represent.ClassDetail),
			remove: deleteHandler(h, svc.DeleteClass),
		},
		model.ResourceProficiencies: {
			list:   listHandler(h, svc.ListProficiencies, represent.ProficiencySummary),
			get:    getHandler(h, svc.GetProficiency, represent.ProficiencyDetail),
			create: createHandler(h, svc.CreateProficiency, represent.ProficiencyDetail),
			update: updateHandler(h, svc.UpdateProficiency, represent.ProficiencyDetail),
			remove: deleteHandler(h, svc.DeleteProficiency),
		},
		model.ResourceRaces: {
			list:   listHandler(h, svc.ListRaces, represent.RaceSummary),
			get:    getHandler(h, svc.GetRace, represent.RaceDetail),
			create: createHandler(h, svc.CreateRace, represent.RaceDetail),
			update: updateHandler(h, svc.UpdateRace, represent.RaceDetail),
			remove: deleteHandler(h, svc.DeleteRace),
		},
		model.ResourceSubraces: {
			list:   listHandler(h, svc.ListSubraces, represent.SubraceSummary),
			get:    getHandler(h, svc.GetSubrace, represent.SubraceDetail),
			create: createHandler(h, svc.CreateSubrace, represent.SubraceDetail),
			update: updateHandler(h, svc.UpdateSubrace, represent.SubraceDetail),
			remove: deleteHandler(h, svc.DeleteSubrace),
		},
		model.ResourceSchools: {
			list:   listHandler(h, svc.ListSchools, represent.SchoolSummary),
			get:    getHandler(h, svc.GetSchool, represent.SchoolDetail),
			create: createHandler(h, svc.CreateSchool, represent.SchoolDetail),
			update: updateHandler(h, svc.UpdateSchool, represent.SchoolDetail),
			remove: deleteHandler(h, svc.DeleteSchool),
		},
		model.ResourceSpells: {
			list:   listHandler(h, svc.ListSpells, represent.SpellSummary),
			get:    getHandler(h, svc.GetSpell, represent.SpellDetail),
			create: createHandler(h, svc.CreateSpell, represent.SpellDetail),
			update: updateHandler(h, svc.UpdateSpell, represent.SpellDetail),
			remove: deleteHandler(h, svc.DeleteSpell),
		},
		model.ResourceSubclasses: {
			list:   listHandler(h, svc.ListSubclasses, represent.SubclassSummary),
			get:    getHandler(h, svc.GetSubclass, represent.SubclassDetail),
			create: createHandler(h, svc.CreateSubclass, represent.SubclassDetail),
			update: updateHandler(h, svc.UpdateSubclass, represent.SubclassDetail),
			remove: deleteHandler(h, svc.DeleteSubclass),
		},
	}
}

// mountCatalog registers the collection and item routes of every resource.
// PUT and any other method get a 405 with the supported methods in Allow.
func (h *Handlers) mountCatalog(mux *http.ServeMux) {
	for name, rt := range h.catalogRoutes() {
		collection := "/" + name + "/{$}"
		item := "/" + name + "/{id}/{$}"

		mux.Handle("GET "+collection, rt.list)
		mux.Handle("POST "+collection, rt.create)
		mux.Handle(collection, methodNotAllowed("GET, POST, HEAD"))

		mux.Handle("GET "+item, rt.get)
		mux.Handle("PATCH "+item, rt.update)
		mux.Handle("DELETE "+item, rt.remove)
		mux.Handle(item, methodNotAllowed("GET, PATCH, DELETE, HEAD"))
	}
}

// parseID reads the {id} path value. Only positive integers name an entity.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func listHandler[E, S any](h *Handlers, list func(context.Context) ([]E, error), shape func(represent.Linker, E) S) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			h.writeInternalError(w, r, "list failed", err)
			return
		}
		writeJSON(w, http.StatusOK, represent.Summaries(h.linker(r), items, shape))
	}
}

func getHandler[R, D any](h *Handlers, get func(context.Context, int64) (R, error), shape func(represent.Linker, R) D) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			h.HandleNotFound(w, r)
			return
		}
		rec, err := get(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, fmt.Sprintf("get %s failed", r.URL.Path), err)
			return
		}
		writeJSON(w, http.StatusOK, shape(h.linker(r), rec))
	}
}

func createHandler[I, R, D any](h *Handlers, create func(context.Context, I) (R, error), shape func(represent.Linker, R) D) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in I
		if err := decodeJSON(w, r, &in, h.maxRequestBodyBytes); err != nil {
			handleDecodeError(w, r, err)
			return
		}
		rec, err := create(r.Context(), in)
		if err != nil {
			h.writeServiceError(w, r, fmt.Sprintf("create under %s failed", r.URL.Path), err)
			return
		}
		writeJSON(w, http.StatusCreated, shape(h.linker(r), rec))
	}
}

func updateHandler[I, R, D any](h *Handlers, update func(context.Context, int64, I) (R, error), shape func(represent.Linker, R) D) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			h.HandleNotFound(w, r)
			return
		}
		var in I
		if err := decodeJSON(w, r, &in, h.maxRequestBodyBytes); err != nil {
			handleDecodeError(w, r, err)
			return
		}
		rec, err := update(r.Context(), id, in)
		if err != nil {
			h.writeServiceError(w, r, fmt.Sprintf("update %s failed", r.URL.Path), err)
			return
		}
		writeJSON(w, http.StatusOK, shape(h.linker(r), rec))
	}
}

func deleteHandler(h *Handlers, remove func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			h.HandleNotFound(w, r)
			return
		}
		if err := remove(r.Context(), id); err != nil {
			h.writeServiceError(w, r, fmt.Sprintf("delete %s failed", r.URL.Path), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
