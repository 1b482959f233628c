// Package state provides in-memory per-user storage and per-user locking for Telegram bots.
// It is intentionally domain-agnostic: conversations plug their own value types in.
package state
