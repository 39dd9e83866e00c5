package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := a.db.Summary()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, s)
}

func (a *App) handlePairs(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		http.Error(w, "missing query parameter tag", http.StatusBadRequest)
		return
	}
	limit := clampLimit(queryInt(r, "limit", "pairs"))
	key := pairsKey{tag: tag, limit: limit}
	if cached, ok := a.pairs.Get(key); ok {
		writeJSON(w, cached)
		return
	}
	pairs, err := a.db.PairsForTag(tag, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.pairs.Add(key, pairs)
	writeJSON(w, pairs)
}

func (a *App) handleImplications(w http.ResponseWriter, r *http.Request) {
	minCP := 0.95
	if s := r.URL.Query().Get("min_cp"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			http.Error(w, "min_cp must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
		minCP = v
	}
	var minPxy int64 = 1
	if s := r.URL.Query().Get("min_pxy"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "min_pxy must be an integer", http.StatusBadRequest)
			return
		}
		minPxy = v
	}
	list, err := a.db.Implications(minCP, minPxy, queryInt(r, "limit", "implications"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (a *App) handleTop(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "mi"
	}
	if _, ok := metricColumns[metric]; !ok {
		http.Error(w, "unknown metric (want mi, cpxy, cpyx, metric1, metric2 or pxy)", http.StatusBadRequest)
		return
	}
	pairs, err := a.db.Top(metric, queryInt(r, "limit", "top"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, pairs)
}

// queryInt reads an optional integer parameter; bad values fall back to 0 (the default).
func queryInt(r *http.Request, name, endpoint string) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("%s: invalid %s %q, using default", endpoint, name, s)
		return 0
	}
	return v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
