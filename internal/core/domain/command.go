package domain

import "fmt"

// CommandType names a discrete edit sent by the map or the control panel.
type CommandType string

const (
	CmdAddPoint      CommandType = "add_point"
	CmdMovePoint     CommandType = "move_point"
	CmdRemovePoint   CommandType = "remove_point"
	CmdSetMode       CommandType = "set_mode"
	CmdClear         CommandType = "clear"
	CmdSetBaseLayer  CommandType = "set_base_layer"
	CmdToggleSidebar CommandType = "toggle_sidebar"
)

// Command is a single message dispatched to a session.
type Command struct {
	Type      CommandType `json:"type"`
	Point     *GeoPoint   `json:"point,omitempty"`
	Index     *int        `json:"index,omitempty"`
	Mode      Mode        `json:"mode,omitempty"`
	BaseLayer BaseLayer   `json:"base_layer,omitempty"`
}

// Validate checks that the fields required by the command type are present.
func (c Command) Validate() error {
	switch c.Type {
	case CmdAddPoint:
		if c.Point == nil {
			return fmt.Errorf("%w: %s requires point", ErrInvalidCommand, c.Type)
		}
		return c.Point.Validate()
	case CmdMovePoint:
		if c.Index == nil || c.Point == nil {
			return fmt.Errorf("%w: %s requires index and point", ErrInvalidCommand, c.Type)
		}
		return c.Point.Validate()
	case CmdRemovePoint:
		if c.Index == nil {
			return fmt.Errorf("%w: %s requires index", ErrInvalidCommand, c.Type)
		}
	case CmdSetMode:
		if _, err := ParseMode(string(c.Mode)); err != nil {
			return err
		}
	case CmdSetBaseLayer:
		if !c.BaseLayer.Valid() {
			return fmt.Errorf("%w: unknown base layer %q", ErrInvalidCommand, c.BaseLayer)
		}
	case CmdClear, CmdToggleSidebar:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, c.Type)
	}
	return nil
}
