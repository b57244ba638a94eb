package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/analog.go/pkg/agent"
	fx "github.com/robotalks/analog.go/pkg/framework"
	"github.com/robotalks/analog.go/pkg/link"
)

func init() {
	agent.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := agent.Resolve()
	if err != nil {
		glog.Exitf("bad configuration: %v", err)
	}
	a := conf.MustNew()
	glog.Infof("analogd %s on %s", conf.DeviceID, conf.Serial.Port)

	err = fx.NewRunner().HandleSignals().Go(a.Runnables()...).Wait()
	switch {
	case link.IsConfigError(err):
		glog.Exitf("%v", err)
	case err != nil:
		glog.Exitf("stopped: %v", err)
	}
	glog.Info("stopped")
}
