// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package svccall provides a command-line tool that issues a single
// create/read/update/delete call against a servicecall-style HTTP
// service and prints the resulting data value as JSON.  The session
// token can be given on the command line, read from a YAML
// configuration file, or persisted in Redis between invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-servicecall/client"
	"github.com/diffeo/go-servicecall/envelope"
	"github.com/diffeo/go-servicecall/sessionstore"
)

// callEnv holds the objects shared by all of the subcommands.
type callEnv struct {
	Client *client.Client
	Store  sessionstore.Store
}

var env callEnv

// fileConfig mirrors the YAML configuration file.
type fileConfig struct {
	Domain  string `yaml:"domain"`
	Scheme  string `yaml:"scheme"`
	Session string `yaml:"session"`
	Redis   string `yaml:"redis"`
}

func loadConfigYaml(filename string) (fileConfig, error) {
	var config fileConfig
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &config)
	}
	return config, err
}

func callCommand(name, usage string, action client.Action) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<collection> <noun> [json-payload]",
		Action: func(c *cli.Context) error {
			return runCall(action, c)
		},
	}
}

func runCall(action client.Action, c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return errors.New("a collection and a noun are required")
	}

	var payload interface{}
	if len(args) > 2 {
		err := envelope.Decode(envelope.JSONMediaType,
			strings.NewReader(args[2]), &payload)
		if err != nil {
			return fmt.Errorf("could not parse payload: %v", err)
		}
	}

	var value interface{}
	var err error
	switch action {
	case client.ActionCreate:
		value, err = env.Client.Create(args[0], args[1], payload)
	case client.ActionRead:
		value, err = env.Client.Read(args[0], args[1], payload)
	case client.ActionUpdate:
		value, err = env.Client.Update(args[0], args[1], payload)
	case client.ActionDelete:
		value, err = env.Client.Delete(args[0], args[1], payload)
	}
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}

	out, err := envelope.EncodeJSON(value)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func setup(c *cli.Context) error {
	config := fileConfig{Scheme: "https"}
	if filename := c.GlobalString("config"); filename != "" {
		var err error
		config, err = loadConfigYaml(filename)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Error("Could not load YAML configuration")
			return err
		}
		if config.Scheme == "" {
			config.Scheme = "https"
		}
	}
	if domain := c.GlobalString("domain"); domain != "" {
		config.Domain = domain
	}
	if scheme := c.GlobalString("scheme"); scheme != "" {
		config.Scheme = scheme
	}
	if session := c.GlobalString("session"); session != "" {
		config.Session = session
	}
	if addr := c.GlobalString("redis"); addr != "" {
		config.Redis = addr
	}

	options := []client.Option{
		client.WithScheme(config.Scheme),
	}
	if config.Domain != "" {
		options = append(options, client.WithDomain(config.Domain))
	}
	if c.GlobalBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		options = append(options, client.WithLogger(logrus.StandardLogger()))
	}
	env.Client = client.New(options...)

	if config.Redis != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.Redis})
		store, err := sessionstore.New(sessionstore.Redis,
			sessionstore.WithRedisClient(rdb))
		if err != nil {
			return err
		}
		env.Store = store
		if config.Session == "" {
			config.Session, err = store.Load(context.Background())
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"err": err,
				}).Error("Could not load session token")
				return err
			}
		}
	}
	env.Client.SetSession(config.Session)

	return env.Client.RegisterMany(map[client.Kind]interface{}{
		client.Warning: func(warning interface{}, ev client.Event) {
			logrus.WithFields(logrus.Fields{
				"warning": warning,
				"url":     ev.URL,
			}).Warn("The service reported a warning")
		},
		client.NoSession: func() {
			logrus.Warn("The service rejected the session token")
			env.Client.SetSession("")
			if env.Store != nil {
				_ = env.Store.Clear(context.Background())
			}
		},
	})
}

func teardown(c *cli.Context) error {
	if env.Store == nil {
		return nil
	}
	err := env.Store.Save(context.Background(), env.Client.Session())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Error("Could not save session token")
	}
	return env.Store.Close()
}

func main() {
	app := cli.NewApp()
	app.Name = "svccall"
	app.Usage = "issue CRUD calls against a servicecall HTTP service"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "domain",
			Usage: "hostname of the remote service",
		},
		cli.StringFlag{
			Name:  "scheme",
			Usage: "URL scheme, http or https",
		},
		cli.StringFlag{
			Name:  "session",
			Usage: "session token to send verbatim as Authorization",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		cli.StringFlag{
			Name:  "redis",
			Usage: "host:port of a Redis server persisting the session token",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every dispatch at debug level",
		},
	}
	app.Commands = []cli.Command{
		callCommand("create", "POST a noun within a collection", client.ActionCreate),
		callCommand("read", "GET a noun within a collection", client.ActionRead),
		callCommand("update", "PUT a noun within a collection", client.ActionUpdate),
		callCommand("delete", "DELETE a noun within a collection", client.ActionDelete),
	}
	app.Before = setup
	app.After = teardown
	app.RunAndExitOnError()
}
