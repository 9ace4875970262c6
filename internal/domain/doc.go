// Package domain contains the core entities of the task management
// application: users with their single authoritative role, tasks with
// their deadline/notification state, and task comments.
//
// Domain types validate themselves on construction and carry no
// persistence or transport concerns.
package domain
