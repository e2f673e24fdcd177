// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import "errors"

var (
	// ErrIndexRequired is returned when a search index is not provided.
	ErrIndexRequired = errors.New("search index required")

	// ErrIndexNameRequired is returned when the index name is empty.
	ErrIndexNameRequired = errors.New("index name required")

	// ErrCallbackRequired is returned when FindProduct is called without a callback.
	ErrCallbackRequired = errors.New("callback required")

	// ErrFinderClosed is returned when work is submitted after Close.
	ErrFinderClosed = errors.New("finder closed")

	// ErrReleaseTimeout is returned by Close when callbacks are still running
	// after the release timeout.
	ErrReleaseTimeout = errors.New("timed out waiting for find callbacks")
)
