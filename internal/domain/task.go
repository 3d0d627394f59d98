package domain

import "context"

// TaskToken is the host's opaque label for what it is currently doing.
type TaskToken string

// HeaderCurrentTask carries the current TaskToken on the host endpoint's response.
const HeaderCurrentTask = "x-current-task"

// EventNewTask is the type of the event published when the held task changes.
const EventNewTask = "NewTask"

// Tasks reported by the host while it bootstraps the client.
const (
	TaskCheckingForUpdates TaskToken = "CheckingForUpdates"
	TaskDownloadingClient  TaskToken = "DownloadingClient"
	TaskPreparingFiles     TaskToken = "PreparingFiles"
	TaskLaunchingGame      TaskToken = "LaunchingGame"
)

// HostTasks lists the host tasks in the order the host walks through them.
func HostTasks() []TaskToken {
	return []TaskToken{
		TaskCheckingForUpdates,
		TaskDownloadingClient,
		TaskPreparingFiles,
		TaskLaunchingGame,
	}
}

// ChangeEvent signals that the held task changed. It carries no payload
// beyond its type; listeners read the new value from the bridge.
type ChangeEvent struct {
	Type string
}

// TaskSource returns the host's current task candidate.
type TaskSource interface {
	CurrentTask(ctx context.Context) (TaskToken, error)
}
