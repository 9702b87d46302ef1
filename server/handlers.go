package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.db.RunStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cfgs, err := a.db.SearchCFGs(q, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfgs)
}

func (a *App) handleListCFGs(w http.ResponseWriter, r *http.Request) {
	cfgs, err := a.db.ListCFGs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfgs)
}

func (a *App) handleCFGByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing query parameter name", http.StatusBadRequest)
		return
	}
	detail, err := a.db.CFGDetail(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, detail)
}

func (a *App) handleDistanceByLine(w http.ResponseWriter, r *http.Request) {
	line, err := strconv.Atoi(r.URL.Query().Get("line"))
	if err != nil {
		http.Error(w, "missing or invalid query parameter line", http.StatusBadRequest)
		return
	}
	d, err := a.db.DistanceForLine(line)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if d == nil {
		http.Error(w, "no distance recorded for that line", http.StatusNotFound)
		return
	}
	writeJSON(w, d)
}

func (a *App) handleCallPath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if from == "" {
		http.Error(w, "missing query parameter from", http.StatusBadRequest)
		return
	}
	path, err := a.db.CallPath(from)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, path)
}

func (a *App) handleCFGBlocks(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	blocks, err := a.db.BlocksByCFGName(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, blocks)
}

func (a *App) handleBlockDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	blockID, err := strconv.Atoi(chi.URLParam(r, "block"))
	if err != nil {
		http.Error(w, "invalid block id", http.StatusBadRequest)
		return
	}
	detail, err := a.db.BlockDetail(name, blockID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, detail)
}

func (a *App) handleCallGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	calls, rets, err := a.db.CallGraphForCFG(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"calls": calls, "rets": rets})
}

func (a *App) handleSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.db.Summaries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (a *App) handleDistances(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	distances, err := a.db.Distances(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, distances)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
