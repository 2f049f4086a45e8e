// Package api holds the response envelope shared by every handler.
package api

import (
	"encoding/json"
	"net/http"

	"storefront/internal/paging"
)

type Response struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Pagination *paging.Pagination `json:"pagination,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func OKPaginated(w http.ResponseWriter, data any, p paging.Pagination) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Success: false, Message: message})
}
