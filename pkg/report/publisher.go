package report

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/robotalks/analog.go/pkg/analog"
	"github.com/robotalks/analog.go/pkg/comm/mqtt"
	"github.com/robotalks/analog.go/pkg/link"
	"github.com/robotalks/analog.go/pkg/msgs"
)

// TopicRoot is the first topic level under the broker prefix.
const TopicRoot = "analog"

// Topic names under analog/<id>/.
const (
	TopicStatus = "status"
	TopicLink   = "link"
	TopicMeta   = "meta"
)

const (
	// clearTimeout bounds the meta clear on shutdown.
	clearTimeout = time.Second
	// connectWarnDelay is how long to wait for the broker before warning.
	connectWarnDelay = 10 * time.Second
)

// DeviceTopic builds analog/<id>/<name>.
func DeviceTopic(id, name string) string {
	return TopicRoot + "/" + id + "/" + name
}

// Publisher publishes snapshots and link state to MQTT.
// It never waits on publish tokens; a stalled broker connection blocks a
// publish at most mqtt.DefaultWriteTimeout.
type Publisher struct {
	Queue *mqtt.Queue
	ID    string
	Port  string

	metaJSON []byte
	lock     sync.Mutex
	state    *link.State
}

// NewPublisher creates a Publisher from broker URL.
func NewPublisher(brokerURL, id string, meta msgs.DeviceMeta) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+DeviceTopic(id, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("analog:" + id)
	}
	p := &Publisher{
		Queue:    mqtt.NewQueue(opts, topicPrefix),
		ID:       id,
		Port:     meta.Port,
		metaJSON: metaJSON,
	}
	p.Queue.OnConnect = func(*mqtt.Queue) { p.onConnected() }
	return p, nil
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Report implements Reporter.
func (p *Publisher) Report(ctx context.Context, s analog.Snapshot) error {
	data, err := msgs.Encode(msgs.NewSensorStatus(s))
	if err != nil {
		return err
	}
	p.Queue.Pub(DeviceTopic(p.ID, TopicStatus), data)
	return nil
}

// StateChanged implements link.StateNotifier.
func (p *Publisher) StateChanged(ctx context.Context, state link.State) {
	p.lock.Lock()
	p.state = &state
	p.lock.Unlock()
	p.publishState(state)
}

// Run implements Runnable.
// The first connection is retried in background until it succeeds.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			glog.Errorf("MQTT connect error: %v", err)
		}
	case <-time.After(connectWarnDelay):
		glog.Warningf("MQTT broker not reachable after %v, still retrying", connectWarnDelay)
	case <-ctx.Done():
	}
	<-ctx.Done()
	if !p.Queue.Client.IsConnectionOpen() {
		p.Queue.Close()
		return ctx.Err()
	}
	token = p.Queue.PubWith(DeviceTopic(p.ID, TopicMeta), nil, 1, true)
	if !token.WaitTimeout(clearTimeout) {
		glog.Warning("MQTT clear meta timed out")
	}
	p.Queue.Close()
	return ctx.Err()
}

func (p *Publisher) onConnected() {
	p.Queue.PubWith(DeviceTopic(p.ID, TopicMeta), p.metaJSON, 1, true)
	p.lock.Lock()
	state := p.state
	p.lock.Unlock()
	if state != nil {
		p.publishState(*state)
	}
}

func (p *Publisher) publishState(state link.State) {
	data, err := msgs.Encode(&msgs.LinkStatus{Port: p.Port, State: state.String()})
	if err != nil {
		glog.Errorf("encode link status error: %v", err)
		return
	}
	p.Queue.PubWith(DeviceTopic(p.ID, TopicLink), data, 1, true)
}
