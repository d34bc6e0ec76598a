package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	cerr "github.com/fnndsc/chrisctl/cmd/chris/errors"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTaskWithCommonFlag builds a flarc.Task which receives CommonFlags
// given to the command group, and a logger writing to stderr.
func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(ctx, logger, commonFlag, cl, newpos)
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	client rest.ChrisClient,
	cl flarc.Commandline[T],
	params []any,
) error

// LoadProfile reads the profile named in CommonFlags.
func LoadProfile(commonFlag CommonFlags) (*prof.ChrisProfile, error) {
	store, err := prof.LoadProfileStore(commonFlag.ProfileStore)
	if err != nil {
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			return nil, cerr.NewCuiError(
				fmt.Sprintf("chris profile store (%s) is not found", commonFlag.ProfileStore),
				cerr.WithCause(err),
				cerr.WithAdvice("Try `chris init` first."),
			)
		}
		return nil, fmt.Errorf(
			"%w: failed to load chris profile store (%s)",
			err, commonFlag.ProfileStore,
		)
	}
	profile, ok := store[commonFlag.Profile]
	if !ok || profile == nil {
		return nil, cerr.NewCuiError(
			fmt.Sprintf(
				"profile '%s' not found in the profile store (%s)",
				commonFlag.Profile, commonFlag.ProfileStore,
			),
			cerr.WithAdvice("Try `chris init` first, or pass --profile."),
		)
	}
	return profile, nil
}

// NewTask builds a flarc.Task which receives a client for the profile
// given by CommonFlags.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		profile, err := LoadProfile(commonFlag)
		if err != nil {
			return err
		}

		client, err := rest.NewClient(profile)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create chris client. Your profile (%s in %s) can be broken.\n\nTry `chris init` again",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, client, cl, params)
	})
}
