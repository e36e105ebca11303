package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

var (
	// versionedStablePattern matches pinned stable channels such as stable-v21
	versionedStablePattern = regexp.MustCompile(`^stable-v\d+$`)

	// buildPattern matches literal four-part runtime builds such as 6.55.10.12
	buildPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
)

// mappedFloor splits real runtime majors from port-mapped ones: majors stay
// well under four digits, ports do not
const mappedFloor = 1000

// DefaultResolveHint is how long a channel query may take before the
// not-installed hint is logged
const DefaultResolveHint = 30 * time.Second

// IsChannel reports whether token names a runtime release channel
func IsChannel(token string) bool {
	switch token {
	case consts.ChannelStable, consts.ChannelAlpha, consts.ChannelBeta,
		consts.ChannelCanary, consts.ChannelCanaryNext:
		return true
	}
	return versionedStablePattern.MatchString(token)
}

// Runtime resolves release channel names to concrete build numbers through
// the launcher. Channel lookups are cached on the resolver.
type Runtime struct {
	launcher  types.Launcher
	log       types.Logger
	hintAfter time.Duration

	mu    sync.Mutex
	cache map[string]string
}

// NewRuntime creates a runtime version resolver
func NewRuntime(launcher types.Launcher, hintAfter time.Duration, log types.Logger) *Runtime {
	if hintAfter <= 0 {
		hintAfter = DefaultResolveHint
	}
	return &Runtime{
		launcher:  launcher,
		log:       log,
		hintAfter: hintAfter,
		cache:     make(map[string]string),
	}
}

// Resolve turns a channel name or literal build into a concrete build
// number. Literal builds pass through unchanged; anything that is neither a
// channel nor a build is an error.
func (r *Runtime) Resolve(ctx context.Context, token string) (string, error) {
	if IsChannel(token) {
		return r.resolveChannel(ctx, token)
	}
	if buildPattern.MatchString(token) {
		return token, nil
	}
	return "", types.WrapError(types.ErrInvalidVersion,
		fmt.Sprintf("%s is neither a release channel nor a build number", token))
}

// resolveChannel queries the launcher for the channel's current build. The
// query is awaited past the hint window; the hint only tells the user why
// the wait might be long.
func (r *Runtime) resolveChannel(ctx context.Context, channel string) (string, error) {
	r.mu.Lock()
	cached, ok := r.cache[channel]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	type answer struct {
		build string
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		build, err := r.launcher.ResolveChannel(ctx, channel)
		done <- answer{build: build, err: err}
	}()

	var res answer
	select {
	case res = <-done:
	case <-time.After(r.hintAfter):
		r.log.Warn("runtime version query is slow; the runtime may not be installed",
			"channel", channel)
		res = <-done
	}

	if res.err != nil {
		return "", types.WrapError(res.err, fmt.Sprintf("resolving channel %s", channel))
	}

	build := strings.TrimSpace(res.build)
	if _, err := goversion.NewVersion(build); err != nil {
		return "", types.WrapError(types.ErrInvalidVersion,
			fmt.Sprintf("launcher reported %q for channel %s", res.build, channel))
	}

	r.mu.Lock()
	r.cache[channel] = build
	r.mu.Unlock()

	r.log.Debug("resolved runtime channel", "channel", channel, "build", build)
	return build, nil
}

// Mapped substitutes the leading segment of a build number with the dev
// server port. Injected services run on a private runtime copy named this
// way. Input that already carries a mapped leading segment is rejected.
func Mapped(build string, port int) (string, error) {
	if !buildPattern.MatchString(build) {
		return "", types.WrapError(types.ErrInvalidVersion,
			fmt.Sprintf("%s is not a build number", build))
	}

	parts := strings.SplitN(build, ".", 2)
	leading, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", types.WrapError(types.ErrInvalidVersion, build)
	}
	if leading >= mappedFloor {
		return "", types.WrapError(types.ErrVersionMapped, build)
	}

	return fmt.Sprintf("%d.%s", port, parts[1]), nil
}
