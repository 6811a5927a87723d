// Copyright 2025 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package display

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppRunsIdleBetweenIterations(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	idle := func(ctx context.Context) {
		calls++
		if calls >= 3 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- NewApp(NopNotifier{}, idle, time.Millisecond).Run(ctx)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("display loop did not stop after context cancel")
	}
	// idle runs on the loop goroutine, so once Run returns the counter
	// is stable.
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAppWithoutIdleBlocksUntilCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewApp(NopNotifier{}, nil, time.Second).Run(ctx)
	}()

	select {
	case <-done:
		t.Fatal("display loop stopped without context cancel")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("display loop did not stop after context cancel")
	}
}
