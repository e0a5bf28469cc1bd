/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command abinder-demo is a thin, non-core demonstration binary: it is not
// part of the binder's importable surface, only a runnable example of
// wiring an apiset, an exported listen socket and the event loop together
// behind a cobra CLI.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nabbar/abinder/api"
	"github.com/nabbar/abinder/apiset"
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/config"
	"github.com/nabbar/abinder/datatype"
	"github.com/nabbar/abinder/evloop"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/metrics"
	"github.com/nabbar/abinder/request"
	"github.com/nabbar/abinder/rpc/dispatch"
	"github.com/nabbar/abinder/rpc/wrapper"
	"github.com/nabbar/abinder/uri"
)

var (
	cfgFile    string
	listenURI  string
	metricsURI string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "abinder-demo",
		Short: "Demonstration host for the abinder micro-services binder",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./abinder-demo.yaml)")
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Export a demo 'greeter' API and serve it on a binder socket",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&listenURI, "listen", "tcp://127.0.0.1:9123", "binder socket URI to listen on")
	cmd.Flags().StringVar(&metricsURI, "metrics-addr", ":9090", "address to serve /metrics on")
	return cmd
}

func loadViper() (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("abinder-demo")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return v, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.New()

	v, err := loadViper()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cmd.Flags().Changed("listen") {
		if s := v.GetString("listen"); s != "" {
			listenURI = s
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if s := v.GetString("metrics-addr"); s != "" {
			metricsURI = s
		}
	}
	cfg := config.New(context.Background(), v, log)
	cfg.WatchReload(func(err error) {
		log.Error("abinder-demo: config reload failed", "error", err)
	})

	u, err := uri.Parse(listenURI)
	if err != nil {
		return fmt.Errorf("parsing --listen: %w", err)
	}
	if u.Protocol != uri.ProtocolTCP && u.Protocol != uri.ProtocolUnix {
		return fmt.Errorf("abinder-demo only serves tcp:// or unix:// sockets, got %s", listenURI)
	}

	set := apiset.New("demo")
	if err := set.Add(greeterAPI()); err != nil {
		return fmt.Errorf("registering greeter api: %w", err)
	}

	reg := metrics.New("abinder_demo")
	if err := reg.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	loop, err := evloop.New(log)
	if err != nil {
		return fmt.Errorf("creating event loop: %w", err)
	}
	loop.SetCycleObserver(func(d time.Duration, fds int) {
		reg.EventLoopCycle.Set(d.Seconds())
	})
	loop.AddTimer(time.Second, 10*time.Millisecond, time.Second, 0, func(decount uint32) {})

	ln, err := listen(u)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listenURI, err)
	}
	defer func() { _ = ln.Close() }()
	log.Info("abinder-demo: listening", "uri", listenURI)

	httpSrv := &http.Server{Addr: metricsURI, Handler: promhttp.Handler()}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("abinder-demo: metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go acceptLoop(ctx, ln, set, log)

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run() }()

	select {
	case <-ctx.Done():
	case err := <-loopErr:
		if err != nil {
			log.Error("abinder-demo: event loop stopped", "error", err)
		}
	}

	loop.Stop()
	_ = loop.Close()
	_ = httpSrv.Close()
	return nil
}

func listen(u *uri.URI) (net.Listener, error) {
	if u.Protocol == uri.ProtocolUnix {
		return net.Listen("unix", u.Path)
	}
	return net.Listen("tcp", net.JoinHostPort(u.Host, u.Port))
}

func acceptLoop(ctx context.Context, ln net.Listener, set *apiset.Set, log logger.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("abinder-demo: accept failed", "error", err)
				return
			}
		}
		w := wrapper.NewFD(conn, wrapper.FD, log)
		dispatch.Bind(w.Stub, set, nil, log)
		go func() {
			defer func() { _ = w.Close() }()
			if err := w.ReadLoop(); err != nil {
				log.Info("abinder-demo: connection closed", "error", err)
			}
		}()
	}
}

// greeterAPI is the demo's single exported API: one "hello" verb that
// echoes back a greeting built from the caller's first string argument.
func greeterAPI() *api.API {
	a, err := api.New("greeter", "demo greeter api", "", nil)
	if err != nil {
		panic(err)
	}
	_ = a.AddStaticVerb(&api.Verb{
		Name: "hello",
		Info: "greet the caller",
		Auth: auth.YesAuth(),
		Callback: func(r *request.Request, closure interface{}) {
			name := "world"
			if p := r.Params(); len(p) > 0 {
				if b := p[0].GetConst(); len(b) > 0 {
					name = string(b)
				}
			}
			out := datatype.NewCopy(datatype.Stringz, []byte("hello, "+name))
			r.Reply(0, []*datatype.Data{out})
		},
	})
	return a
}
