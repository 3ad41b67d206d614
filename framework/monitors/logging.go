package monitors

import (
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-gems/framework/container"
)

// Logging reports container activity to a logrus logger: instantiations and
// new behaviors at debug, failures at error and misses at info.
type Logging struct {
	log logrus.FieldLogger
}

// NewLogging returns a Logging monitor writing to log.
func NewLogging(log logrus.FieldLogger) *Logging {
	return &Logging{log: log}
}

func (m *Logging) NewBehavior(a container.Adapter) container.Adapter {
	m.log.WithFields(logrus.Fields{
		"key":      a.Key(),
		"behavior": container.Describe(a),
	}).Debug("behavior added")
	return a
}

func (m *Logging) Instantiated(key string, _ any, took time.Duration) {
	m.log.WithFields(logrus.Fields{"key": key, "took": took}).Debug("component instantiated")
}

func (m *Logging) InstantiationFailed(key string, err error) {
	m.log.WithField("key", key).WithError(err).Error("component instantiation failed")
}

func (m *Logging) NoComponentFound(_ *container.Container, key any) any {
	m.log.WithField("key", describeKey(key)).Info("no component found")
	return nil
}

func describeKey(key any) string {
	if t, ok := key.(reflect.Type); ok {
		return container.KeyOf(t)
	}
	return fmt.Sprint(key)
}
