package tasks

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/tasknest/tasknest/auth"
)

// CreateTaskRequest is the payload accepted by the create endpoint.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

func validatePriority(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}

	if s == "" {
		return nil
	}
	if !ValidPriority(s) {
		return stderrors.New("Priority must be one of: high, medium, low")
	}
	return nil
}

func (r CreateTaskRequest) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Description, validation.Required),
			validation.Field(&r.Priority, validation.By(validatePriority)),
		)
	}, "Invalid task payload")
	if err != nil {
		return err
	}
	return nil
}

// UpdateTaskRequest is a partial update; absent fields keep their stored
// values.
type UpdateTaskRequest struct {
	TaskChanges
}

func (r UpdateTaskRequest) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		changes := r.TaskChanges
		return validation.ValidateStruct(&changes,
			validation.Field(&changes.Description, validation.NilOrNotEmpty),
			validation.Field(&changes.Priority, validation.By(validatePriority)),
		)
	}, "Invalid task payload")
	if err != nil {
		return err
	}
	return nil
}

// TaskController exposes the task endpoints as JSON handlers. All routes run
// behind the identity middleware; the acting user always comes from verified
// claims.
type TaskController struct {
	Debug  bool
	Logger auth.Logger
	Repo   Tasks
}

type TaskControllerOption func(*TaskController) *TaskController

func NewTaskController(opts ...TaskControllerOption) *TaskController {
	ctrl := &TaskController{}

	for _, opt := range opts {
		if opt != nil {
			ctrl = opt(ctrl)
		}
	}

	if ctrl.Repo == nil {
		panic("TASKS: TaskController requires a Tasks repository")
	}

	return ctrl
}

func WithTasksRepository(repo Tasks) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		c.Repo = repo
		return c
	}
}

func WithControllerLogger(logger auth.Logger) TaskControllerOption {
	return func(c *TaskController) *TaskController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterTaskRoutes mounts the task endpoints behind the protected
// middleware.
func RegisterTaskRoutes(r fiber.Router, ctrl *TaskController, protected fiber.Handler) {
	grp := r.Group("/tasks", protected)
	grp.Post("/", ctrl.TaskCreate)
	grp.Get("/", ctrl.TaskList)
	grp.Put("/:id", ctrl.TaskUpdate)
	grp.Delete("/:id", ctrl.TaskDelete)
}

func (ctrl *TaskController) actingUser(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := auth.GetClaims(c.UserContext())
	if !ok {
		return uuid.Nil, goerrors.New(
			"Missing authentication token",
			goerrors.CategoryAuth,
		).WithCode(goerrors.CodeUnauthorized)
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, goerrors.New(
			"Invalid or expired authentication token",
			goerrors.CategoryAuth,
		).WithCode(goerrors.CodeUnauthorized)
	}

	return id, nil
}

// TaskCreate handles POST /tasks.
func (ctrl *TaskController) TaskCreate(c *fiber.Ctx) error {
	userID, err := ctrl.actingUser(c)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	payload := CreateTaskRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return ctrl.renderError(c, goerrors.Wrap(
			err,
			goerrors.CategoryBadInput,
			"Invalid task payload",
		).WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return ctrl.renderError(c, err)
	}

	task := &Task{
		UserID:      userID,
		Description: payload.Description,
		Category:    payload.Category,
		Priority:    payload.Priority,
		Completed:   payload.Completed,
	}

	record, err := ctrl.Repo.Create(c.UserContext(), task)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Task created successfully",
		"data":    record,
	})
}

// TaskList handles GET /tasks. It only ever returns the acting user's tasks.
func (ctrl *TaskController) TaskList(c *fiber.Ctx) error {
	userID, err := ctrl.actingUser(c)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	records, err := ctrl.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}

// TaskUpdate handles PUT /tasks/:id.
func (ctrl *TaskController) TaskUpdate(c *fiber.Ctx) error {
	userID, err := ctrl.actingUser(c)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ctrl.renderError(c, goerrors.New(
			"Task not found",
			goerrors.CategoryNotFound,
		).WithCode(goerrors.CodeNotFound))
	}

	payload := UpdateTaskRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return ctrl.renderError(c, goerrors.Wrap(
			err,
			goerrors.CategoryBadInput,
			"Invalid task payload",
		).WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return ctrl.renderError(c, err)
	}

	record, err := ctrl.Repo.UpdateOwned(c.UserContext(), taskID, userID, payload.TaskChanges)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task updated successfully",
		"data":    record,
	})
}

// TaskDelete handles DELETE /tasks/:id.
func (ctrl *TaskController) TaskDelete(c *fiber.Ctx) error {
	userID, err := ctrl.actingUser(c)
	if err != nil {
		return ctrl.renderError(c, err)
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ctrl.renderError(c, goerrors.New(
			"Task not found",
			goerrors.CategoryNotFound,
		).WithCode(goerrors.CodeNotFound))
	}

	if err := ctrl.Repo.DeleteOwned(c.UserContext(), taskID, userID); err != nil {
		return ctrl.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// renderError keeps the task endpoints on their own envelope. A missing task
// and a task owned by someone else render the same 404.
func (ctrl *TaskController) renderError(c *fiber.Ctx, err error) error {
	// The store reports missing and foreign-owned tasks with its own
	// not-found taxonomy; map it before inspecting categories.
	if repository.IsRecordNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Task not found",
		})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	if ctrl.Logger != nil {
		ctrl.Logger.Info("task request error", "category", richErr.Category, "path", c.Path())
	}

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": richErr.Message,
		})
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		body := fiber.Map{
			"success": false,
			"message": richErr.Message,
		}
		if len(richErr.Metadata) > 0 {
			body["fields"] = richErr.Metadata
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case goerrors.CategoryNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Task not found",
		})
	default:
		if ctrl.Logger != nil {
			ctrl.Logger.Error("unexpected task error", "error", richErr.Error())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}
