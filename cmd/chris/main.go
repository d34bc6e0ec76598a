package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/common"
	subfeed "github.com/fnndsc/chrisctl/cmd/chris/subcommands/feed"
	subinit "github.com/fnndsc/chrisctl/cmd/chris/subcommands/init"
	subinst "github.com/fnndsc/chrisctl/cmd/chris/subcommands/instance"
	"github.com/fnndsc/chrisctl/cmd/chris/subcommands/logger"
	subplugin "github.com/fnndsc/chrisctl/cmd/chris/subcommands/plugin"
	subserve "github.com/fnndsc/chrisctl/cmd/chris/subcommands/serve"
	subver "github.com/fnndsc/chrisctl/cmd/chris/subcommands/version"
	"github.com/fnndsc/chrisctl/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	feed := try.To(subfeed.New()).OrFatal(logger)
	instance := try.To(subinst.New()).OrFatal(logger)
	plugin := try.To(subplugin.New()).OrFatal(logger)
	serve := try.To(subserve.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	chris := try.To(
		flarc.NewCommandGroup(
			"ChRIS Commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("feed", feed),
			flarc.WithSubcommand("instance", instance),
			flarc.WithSubcommand("plugin", plugin),
			flarc.WithSubcommand("serve", serve),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, chris, flarc.WithHelp(true)))
}
