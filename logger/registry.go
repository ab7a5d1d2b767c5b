package logger

import "sync"

// components holds loggers by component name. Explicit registrations win over
// loggers derived from the global one.
var components struct {
	sync.RWMutex
	explicit map[string]*Logger
	derived  map[string]*Logger
}

// Register pins the logger returned by Get for name, e.g. a quieter logger
// for the inspection server.
func Register(name string, l *Logger) {
	components.Lock()
	defer components.Unlock()
	if components.explicit == nil {
		components.explicit = make(map[string]*Logger)
	}
	components.explicit[name] = l
}

// Get returns the logger for a component. Unregistered names get the global
// logger tagged with the component, derived once and reused.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.explicit[name]
	if !ok {
		l, ok = components.derived[name]
	}
	components.RUnlock()
	if ok {
		return l
	}

	components.Lock()
	defer components.Unlock()
	if l, ok := components.derived[name]; ok {
		return l
	}
	if components.derived == nil {
		components.derived = make(map[string]*Logger)
	}
	l = GetGlobalLogger().WithComponent(name)
	components.derived[name] = l
	return l
}

// Reset drops every component logger. Call it after replacing the global
// logger so derived loggers pick up the new one.
func Reset() {
	components.Lock()
	defer components.Unlock()
	components.explicit = nil
	components.derived = nil
}
