package hooks

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sho7650/forge-install/internal/config"
	"github.com/sho7650/forge-install/internal/jsonval"
)

// HookRegistered reports whether any entry of seq has a string command
// containing name.
//
// The check is substring containment rather than path equality so that an
// entry written by a run from another checkout location still counts. A
// command that merely embeds name in a longer file name also matches.
func HookRegistered(seq jsonval.Array, name string) bool {
	_, ok := findEntry(seq, name)
	return ok
}

// RegisterHook appends entry to seq unless an entry for the same script is
// already present. It returns the resulting sequence and whether it
// appended. Existing entries keep their order.
func RegisterHook(seq jsonval.Array, entry Entry) (jsonval.Array, bool) {
	if HookRegistered(seq, entry.Name()) {
		return seq, false
	}
	return append(seq, entry.Value()), true
}

// MergeForgeHooks returns a copy of settings in which every hook required
// by mode is registered exactly once, with commands pointing into
// hooksDir. It also returns how many entries were added. Keys other than
// hooks, and entries not owned by FORGE, are left as they were.
func MergeForgeHooks(settings *jsonval.Object, hooksDir string, mode config.Mode, log logrus.FieldLogger) (*jsonval.Object, int) {
	result := settings.Clone()
	registry := hooksRegistry(result, log)

	added := 0
	for _, event := range Events {
		seq := eventSequence(registry, event, log)
		for _, h := range RequiredFor(mode, event) {
			var ok bool
			if seq, ok = RegisterHook(seq, h.Entry(hooksDir)); ok {
				added++
				log.WithField("hook", h.ID()).Debug("registered hook")
			}
		}
		registry.Set(string(event), seq)
	}

	result.Set("hooks", registry)
	return result, added
}

// RemoveForgeHooks returns a copy of settings without any FORGE entry.
// Events left empty are dropped, and so is hooks when nothing remains. The
// second result is the number of entries removed.
func RemoveForgeHooks(settings *jsonval.Object) (*jsonval.Object, int) {
	result := settings.Clone()

	registry, ok := result.GetObject("hooks")
	if !ok {
		return result, 0
	}

	removed := 0
	for _, event := range registry.Keys() {
		seq, ok := registry.GetArray(event)
		if !ok {
			continue
		}

		filtered := make(jsonval.Array, 0, len(seq))
		for _, entry := range seq {
			if isForgeEntry(entry) {
				removed++
				continue
			}
			filtered = append(filtered, entry)
		}

		if len(filtered) > 0 {
			registry.Set(event, filtered)
		} else {
			registry.Delete(event)
		}
	}

	if registry.Len() == 0 {
		result.Delete("hooks")
	}

	return result, removed
}

// HasForgeHooks reports whether settings contain any FORGE entry.
func HasForgeHooks(settings *jsonval.Object) bool {
	registry, ok := settings.GetObject("hooks")
	if !ok {
		return false
	}

	found := false
	registry.Each(func(_ string, value jsonval.Value) {
		seq, ok := value.(jsonval.Array)
		if !ok || found {
			return
		}
		for _, entry := range seq {
			if isForgeEntry(entry) {
				found = true
				return
			}
		}
	})
	return found
}

// RegisteredCommand returns the command of the entry registering h, if any.
func RegisteredCommand(settings *jsonval.Object, h Hook) (string, bool) {
	registry, ok := settings.GetObject("hooks")
	if !ok {
		return "", false
	}
	seq, ok := registry.GetArray(string(h.Event))
	if !ok {
		return "", false
	}
	entry, ok := findEntry(seq, h.Script)
	if !ok {
		return "", false
	}
	cmd, _ := entry.GetString("command")
	return cmd, true
}

func hooksRegistry(settings *jsonval.Object, log logrus.FieldLogger) *jsonval.Object {
	v, present := settings.Get("hooks")
	if !present {
		return jsonval.NewObject()
	}
	registry, ok := v.(*jsonval.Object)
	if !ok {
		log.WithField("kind", v.Kind().String()).Warn("settings hooks is not an object, replacing it")
		return jsonval.NewObject()
	}
	return registry
}

func eventSequence(registry *jsonval.Object, event Event, log logrus.FieldLogger) jsonval.Array {
	v, present := registry.Get(string(event))
	if !present {
		return jsonval.Array{}
	}
	seq, ok := v.(jsonval.Array)
	if !ok {
		log.WithFields(logrus.Fields{
			"event": string(event),
			"kind":  v.Kind().String(),
		}).Warn("hook event is not an array, replacing it")
		return jsonval.Array{}
	}
	return seq
}

func findEntry(seq jsonval.Array, name string) (*jsonval.Object, bool) {
	for _, item := range seq {
		obj, ok := item.(*jsonval.Object)
		if !ok {
			continue
		}
		if cmd, ok := obj.GetString("command"); ok && strings.Contains(cmd, name) {
			return obj, true
		}
	}
	return nil, false
}

func isForgeEntry(entry jsonval.Value) bool {
	for _, h := range ForgeHooks {
		if _, ok := findEntry(jsonval.Array{entry}, h.Script); ok {
			return true
		}
	}
	return false
}
