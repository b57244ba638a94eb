package sh

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/analog.go/pkg/comm/mqtt"
	"github.com/robotalks/analog.go/pkg/msgs"
	"github.com/robotalks/analog.go/pkg/report"
)

// Device is what the monitor knows about a device.
type Device struct {
	ID      string             `json:"id"`
	Meta    *msgs.DeviceMeta   `json:"meta,omitempty"`
	Link    *msgs.LinkStatus   `json:"link,omitempty"`
	Status  *msgs.SensorStatus `json:"status,omitempty"`
	Updated time.Time          `json:"updated"`
}

// Online indicates the device publisher is connected to the broker.
func (d *Device) Online() bool {
	return d.Meta != nil
}

// Monitor tracks devices from MQTT messages.
type Monitor struct {
	lock    sync.RWMutex
	devices map[string]*Device
	now     func() time.Time
}

// NewMonitor creates a Monitor.
func NewMonitor() *Monitor {
	return &Monitor{devices: make(map[string]*Device), now: time.Now}
}

// Subscribe subscribes device topics on the queue.
func (m *Monitor) Subscribe(q *mqtt.Queue) []*mqtt.Subscription {
	return []*mqtt.Subscription{
		q.Sub(report.DeviceTopic("+", report.TopicStatus), m.HandleStatus),
		q.Sub(report.DeviceTopic("+", report.TopicLink), m.HandleLink),
		q.Sub(report.DeviceTopic("+", report.TopicMeta), m.HandleMeta),
	}
}

// deviceID extracts the ID from analog/<id>/<name>.
func deviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != report.TopicRoot {
		return ""
	}
	return parts[1]
}

func (m *Monitor) update(topic string, fn func(*Device)) {
	id := deviceID(topic)
	if id == "" {
		return
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	dev := m.devices[id]
	if dev == nil {
		dev = &Device{ID: id}
		m.devices[id] = dev
	}
	fn(dev)
	dev.Updated = m.now()
}

// HandleStatus is the mqtt.Handler of status topics.
func (m *Monitor) HandleStatus(topic string, payload []byte) {
	status, err := msgs.DecodeSensorStatus(payload)
	if err != nil {
		glog.Warningf("%s: bad status: %v", topic, err)
		return
	}
	m.update(topic, func(d *Device) { d.Status = status })
}

// HandleLink is the mqtt.Handler of link topics.
func (m *Monitor) HandleLink(topic string, payload []byte) {
	status, err := msgs.DecodeLinkStatus(payload)
	if err != nil {
		glog.Warningf("%s: bad link status: %v", topic, err)
		return
	}
	m.update(topic, func(d *Device) { d.Link = status })
}

// HandleMeta is the mqtt.Handler of meta topics.
// An empty payload means the device went offline.
func (m *Monitor) HandleMeta(topic string, payload []byte) {
	if len(payload) == 0 {
		m.update(topic, func(d *Device) { d.Meta = nil })
		return
	}
	var meta msgs.DeviceMeta
	if err := json.Unmarshal(payload, &meta); err != nil {
		glog.Warningf("%s: bad meta: %v", topic, err)
		return
	}
	m.update(topic, func(d *Device) { d.Meta = &meta })
}

// Devices lists devices sorted by ID.
func (m *Monitor) Devices() []Device {
	m.lock.RLock()
	list := make([]Device, 0, len(m.devices))
	for _, dev := range m.devices {
		list = append(list, *dev)
	}
	m.lock.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Device gets a device by ID.
func (m *Monitor) Device(id string) (Device, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if dev := m.devices[id]; dev != nil {
		return *dev, true
	}
	return Device{}, false
}
