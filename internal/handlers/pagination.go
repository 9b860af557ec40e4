package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dias221467/Habit_Tracker/internal/models"
)

const pageParam = "page"

// pageNumber reads ?page=N. A missing value means the first page.
func pageNumber(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get(pageParam)
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// newHabitPage wraps results with absolute next/previous links. The link to
// the first page carries no page parameter.
func newHabitPage(r *http.Request, page int, pageSize, total int64, results []models.Habit) models.HabitPage {
	if results == nil {
		results = []models.Habit{}
	}
	out := models.HabitPage{Count: total, Results: results}

	if int64(page)*pageSize < total {
		next := pageURL(r, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := r.URL.Query()
	if page == 1 {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
