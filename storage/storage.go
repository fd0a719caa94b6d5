package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"taskboard-api/domain"
)

// NotFoundError reports a missing row.
type NotFoundError struct {
	Kind string
}

func (e NotFoundError) Error() string { return e.Kind + " not found" }

// NotFound marks the error for consumers matching on the interface.
func (e NotFoundError) NotFound() {}

// ConflictError reports a row-key collision on insert.
type ConflictError struct {
	Kind string
}

func (e ConflictError) Error() string { return e.Kind + " already exists" }

// Conflict marks the error for consumers matching on the interface.
func (e ConflictError) Conflict() {}

// Storage provides access to the hosted row store and the auth deletion queue.
type Storage struct {
	userTable    *aztables.Client
	projectTable *aztables.Client
	taskTable    *aztables.Client
	deleteQueue  *azqueue.QueueClient
}

// New creates a Storage instance from the given connection string.
func New(connStr, usersTable, projectsTable, tasksTable, deleteQueue string) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}
	queueClientOptions := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	dq, err := azqueue.NewQueueClientFromConnectionString(connStr, deleteQueue, &queueClientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{
		userTable:    svc.NewClient(usersTable),
		projectTable: svc.NewClient(projectsTable),
		taskTable:    svc.NewClient(tasksTable),
		deleteQueue:  dq,
	}, nil
}

// EnqueueUserDeletion hands an account removal over to the external auth
// system. The identity row is deleted synchronously by the caller.
func (s *Storage) EnqueueUserDeletion(ctx context.Context, del domain.UserDeletion) error {
	data, err := json.Marshal(del)
	if err != nil {
		return err
	}
	_, err = s.deleteQueue.EnqueueMessage(ctx, string(data), nil)
	return err
}

func statusCodeIs(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}

func isNotFound(err error) bool { return statusCodeIs(err, http.StatusNotFound) }
func isConflict(err error) bool { return statusCodeIs(err, http.StatusConflict) }

// escapeFilterValue doubles single quotes so user-supplied names cannot
// break out of an OData filter literal.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

var unconditional = azcore.ETagAny

func mergeOptions() *aztables.UpdateEntityOptions {
	return &aztables.UpdateEntityOptions{IfMatch: &unconditional, UpdateMode: aztables.UpdateModeMerge}
}

func replaceOptions() *aztables.UpdateEntityOptions {
	return &aztables.UpdateEntityOptions{IfMatch: &unconditional, UpdateMode: aztables.UpdateModeReplace}
}
