// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

type frameRole int

const (
	roleGeneric frameRole = iota
	roleEnvItem
	roleRotationItem
)

const (
	blockPack        = "pack"
	blockSpec        = "spec"
	blockRequiredEnv = "required_env"
	blockRotations   = "rotations"
)

// frame is one open level of nesting
type frame struct {
	name   string
	indent int
	role   frameRole
	// rotation indexes the rotation entry owned by a roleRotationItem frame
	rotation int
}

// contextStack holds the open frames, outermost first
type contextStack struct {
	frames []frame
}

// closeAt pops every frame at or deeper than indent. A sibling at the same
// depth closes the previous one.
func (s *contextStack) closeAt(indent int) {
	for len(s.frames) > 0 && s.frames[len(s.frames)-1].indent >= indent {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *contextStack) push(f frame) *frame {
	s.frames = append(s.frames, f)
	return &s.frames[len(s.frames)-1]
}

// top returns the innermost frame, or nil when nothing is open
func (s *contextStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *contextStack) isOpen(name string) bool {
	for _, f := range s.frames {
		if f.name == name {
			return true
		}
	}
	return false
}

// names returns the open frame names, outermost first
func (s *contextStack) names() []string {
	out := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		out = append(out, f.name)
	}
	return out
}

// itemFrame builds the frame for a list item opened under the current top
func (s *contextStack) itemFrame(indent int) frame {
	parent := s.top()
	if parent == nil {
		return frame{name: "list-item", indent: indent, role: roleGeneric}
	}

	role := roleGeneric
	switch parent.name {
	case blockRequiredEnv:
		role = roleEnvItem
	case blockRotations:
		role = roleRotationItem
	}
	return frame{name: parent.name + "-item", indent: indent, role: role}
}
