package httpapi

import (
	"net/http"

	"github.com/antoniostano/caretrack/internal/feed"
	"github.com/antoniostano/caretrack/internal/records"
)

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in records.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}
	fields, err := in.CreateFields()
	if err != nil {
		respondDecodeError(w, err)
		return
	}

	client, err := s.store.CreateClient(r.Context(), fields)
	if err != nil {
		s.respondStoreError(w, r, "create_client", err)
		return
	}
	s.publish(feed.Event{Type: feed.TypeClientCreated, ClientID: client.ID})

	// The created record is returned without its id.
	respondJSON(w, http.StatusOK, client.ClientFields)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		s.respondStoreError(w, r, "list_clients", err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_client_id", "Invalid client ID")
		return
	}
	client, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "get_client", err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_client_id", "Invalid client ID")
		return
	}
	var in records.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}
	patch, err := in.Patch()
	if err != nil {
		respondError(w, http.StatusBadRequest, "no_update_fields", "No update fields provided")
		return
	}

	client, err := s.store.UpdateClient(r.Context(), id, patch)
	if err != nil {
		s.respondStoreError(w, r, "update_client", err)
		return
	}
	s.publish(feed.Event{Type: feed.TypeClientUpdated, ClientID: client.ID})
	respondJSON(w, http.StatusOK, client)
}

func (s *Server) handleReplaceClient(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_client_id", "Invalid client ID")
		return
	}
	var in records.ClientInput
	if err := decodeJSON(r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}
	fields, err := in.ReplaceFields()
	if err != nil {
		respondDecodeError(w, err)
		return
	}

	client, err := s.store.ReplaceClient(r.Context(), id, fields)
	if err != nil {
		s.respondStoreError(w, r, "replace_client", err)
		return
	}
	s.publish(feed.Event{Type: feed.TypeClientUpdated, ClientID: client.ID})
	respondJSON(w, http.StatusOK, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_client_id", "Invalid client ID")
		return
	}
	if err := s.store.DeleteClient(r.Context(), id); err != nil {
		s.respondStoreError(w, r, "delete_client", err)
		return
	}
	s.publish(feed.Event{Type: feed.TypeClientDeleted, ClientID: id})
	respondJSON(w, http.StatusOK, messageResponse{Message: "Client deleted successfully"})
}
