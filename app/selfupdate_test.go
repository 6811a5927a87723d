// Copyright 2024 Northern.tech AS
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

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyStagedSelfUpdateNothingStaged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "iris-agent"), "running agent")

	engine := NewUpdateEngine(
		testEngineConfig(dir), nil, nil, nil, nil, nil, nil)

	applied, err := engine.ApplyStagedSelfUpdate(context.Background())
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "running agent",
		readFile(t, filepath.Join(dir, "iris-agent")))
}

func TestApplyStagedSelfUpdate(t *testing.T) {
	dir := t.TempDir()
	agent := filepath.Join(dir, "iris-agent")
	writeFile(t, agent, "running agent")
	writeFile(t, agent+".next", "staged agent")

	engine := NewUpdateEngine(
		testEngineConfig(dir), nil, nil, nil, nil, nil, nil)

	applied, err := engine.ApplyStagedSelfUpdate(context.Background())
	assert.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, "staged agent", readFile(t, agent))
	assert.NoFileExists(t, agent+".next")

	info, err := os.Stat(agent)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	// the second boot finds nothing staged
	applied, err = engine.ApplyStagedSelfUpdate(context.Background())
	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyStagedSelfUpdateStaleBackup(t *testing.T) {
	dir := t.TempDir()
	agent := filepath.Join(dir, "iris-agent")
	writeFile(t, agent, "running agent")
	writeFile(t, agent+".next", "staged agent")
	writeFile(t, agent+".bak", "ancient agent")

	engine := NewUpdateEngine(
		testEngineConfig(dir), nil, nil, nil, nil, nil, nil)

	applied, err := engine.ApplyStagedSelfUpdate(context.Background())
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "staged agent", readFile(t, agent))
	assert.Equal(t, "running agent", readFile(t, agent+".bak"))
}

func TestApplyStagedSelfUpdateMissingAgent(t *testing.T) {
	dir := t.TempDir()
	agent := filepath.Join(dir, "iris-agent")
	// interrupted earlier application: only the staged copy survives
	writeFile(t, agent+".next", "staged agent")

	engine := NewUpdateEngine(
		testEngineConfig(dir), nil, nil, nil, nil, nil, nil)

	applied, err := engine.ApplyStagedSelfUpdate(context.Background())
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "staged agent", readFile(t, agent))
}
