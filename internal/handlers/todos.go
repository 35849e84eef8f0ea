package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/granjaops/taskward/internal/database"
	"github.com/granjaops/taskward/internal/models"
	"github.com/granjaops/taskward/internal/validation"
)

const (
	// MaxTodoTaskLength is the maximum length for a todo title
	MaxTodoTaskLength = 256
)

// TodoHandler handles daily checklist requests
type TodoHandler struct {
	todoRepo database.TodoStoreInterface
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoRepo database.TodoStoreInterface) *TodoHandler {
	return &TodoHandler{todoRepo: todoRepo}
}

// RegisterRoutes registers todo routes on the given router.
// The router should already have the /todos prefix.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTodos).Methods("GET")
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("/{id}/toggle", h.ToggleTodo).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteTodo).Methods("DELETE")
}

// CreateTodoRequest represents a create todo request
type CreateTodoRequest struct {
	Task    string `json:"task" validate:"required,min=1,max=256"`
	DueDate string `json:"due_date,omitempty"`
}

// ListTodos lists todos for one day; defaults to today
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dueDate := r.URL.Query().Get("date")
	if dueDate == "" {
		dueDate = time.Now().Format(models.DueDateLayout)
	} else if _, err := time.Parse(models.DueDateLayout, dueDate); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}

	todos, err := h.todoRepo.ListByDate(ctx, dueDate)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todos")
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

// CreateTodo creates a manual (non-automatic) todo
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Task = validation.SanitizeText(req.Task)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "task is required and must be at most 256 characters")
		return
	}

	dueDate := req.DueDate
	if dueDate == "" {
		dueDate = time.Now().Format(models.DueDateLayout)
	} else if _, err := time.Parse(models.DueDateLayout, dueDate); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "due_date must be YYYY-MM-DD")
		return
	}

	todo := &models.Todo{
		Task:        req.Task,
		DueDate:     dueDate,
		IsAutomatic: false,
	}
	if err := h.todoRepo.Create(ctx, todo); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create todo")
		return
	}
	respondJSON(w, http.StatusCreated, todo)
}

// ToggleTodo flips a todo's completion state. Completing an automatic todo
// suppresses that day's alert on the next reconciliation pass.
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}

	todo, err := h.todoRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todo")
		return
	}
	if todo == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
		return
	}

	if err := h.todoRepo.Toggle(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to toggle todo")
		return
	}

	todo.IsCompleted = !todo.IsCompleted
	respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo removes a manual todo. Automatic todos are owned by the
// reconciler and would reappear on the next pass, so deleting one is refused.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo ID")
		return
	}

	todo, err := h.todoRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todo")
		return
	}
	if todo == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
		return
	}
	if todo.IsAutomatic {
		respondJSONError(w, http.StatusConflict, "Conflict", "Automatic todos cannot be deleted; complete them instead")
		return
	}

	if err := h.todoRepo.Delete(ctx, id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete todo")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
