package nativeabi

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/fingerprint"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/reducer"
)

// ReducerHandle is an opaque handle to a built reducer. Callers must
// not parse or compare its contents beyond equality; it is a UUID string
// rather than a pointer because this package has no cgo export boundary.
type ReducerHandle string

// FatalAbort is returned when PATH_REDUCTION_ON_ERROR is unset or holds
// an unrecognized value and a path fails to parse: the host process is
// expected to abort with the wrapped diagnostic.
// Unlike a real native-ABI boundary this package never calls os.Exit
// itself; the CLI layer maps this error to a fatal exit code.
type FatalAbort struct {
	Path   []cfg.BlockID
	Reason string
}

func (e *FatalAbort) Error() string {
	return fmt.Sprintf("path reduction aborted: %s", e.Reason)
}

var (
	mu      sync.RWMutex
	handles = map[ReducerHandle]*reducer.Reducer{}
)

// Build consumes a snapshot of CFGs and returns an opaque handle to the
// reducer built from them.
func Build(cfgs []*cfg.CFG, k int) (ReducerHandle, error) {
	r, err := reducer.Build(cfgs, k)
	if err != nil {
		return "", err
	}

	h := ReducerHandle(uuid.New().String())
	mu.Lock()
	handles[h] = r
	mu.Unlock()
	return h, nil
}

// Reduce reduces path (entered at entryFun) under handle's reducer and
// returns its fingerprint hex string. If the path fails to parse it
// applies the PATH_REDUCTION_ON_ERROR policy read from the environment.
func Reduce(h ReducerHandle, entryFun cfg.FunID, path []cfg.BlockID) (string, error) {
	mu.RLock()
	r, ok := handles[h]
	mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("nativeabi: unknown reducer handle")
	}

	reduced, err := r.Reduce(entryFun, path)
	if err == nil {
		return fingerprint.Hash(reduced), nil
	}

	var invalid *reducer.InvalidPath
	if !errors.As(err, &invalid) {
		return "", err
	}
	return resolveErrorPolicy(path, invalid)
}

// Free releases a reducer handle. Freeing an unknown or already-freed
// handle is a no-op: handles are opaque keys, so there is nothing to
// double-free.
func Free(h ReducerHandle) {
	mu.Lock()
	delete(handles, h)
	mu.Unlock()
}

// onErrorEnv and debugEnv name the two environment variables governing
// the regex-path reducer's error mode.
const (
	onErrorEnv = "PATH_REDUCTION_ON_ERROR"
	debugEnv   = "PATH_REDUCTION_DEBUG"
)

func resolveErrorPolicy(path []cfg.BlockID, cause error) (string, error) {
	if os.Getenv(debugEnv) != "" {
		fmt.Fprintf(os.Stderr, "path-reduction: offending path: %v\n", path)
	}

	switch os.Getenv(onErrorEnv) {
	case "FULL_PATH":
		return fingerprint.Hash(path), nil
	case "EMPTY_PATH":
		return fingerprint.Hash(nil), nil
	case "":
		return "", &FatalAbort{Path: path, Reason: cause.Error()}
	default:
		return "", &FatalAbort{Path: path, Reason: fmt.Sprintf("unrecognized %s value", onErrorEnv)}
	}
}
