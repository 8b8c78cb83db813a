package cliopts

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRegister_Defaults(t *testing.T) {
	cmd := &cobra.Command{}
	o := Register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{}))
	require.Equal(t, "wall", o.TsSrc)
	require.Equal(t, 15, o.QuitMs)
	require.Equal(t, 10000, o.Buffer)
}

func TestValidate_RequiresCommand(t *testing.T) {
	o := &Options{TsSrc: "wall", Buffer: 1}
	require.Error(t, o.Validate(nil))
}

func TestValidate_RejectsBadTsSrc(t *testing.T) {
	o := &Options{TsSrc: "yesterday", Buffer: 1}
	require.Error(t, o.Validate([]string{"echo"}))
}

func TestValidate_RejectsNonPositiveBuffer(t *testing.T) {
	o := &Options{TsSrc: "wall", Buffer: 0}
	require.Error(t, o.Validate([]string{"echo"}))
}

func TestValidate_ManSkipsCommandRequirement(t *testing.T) {
	o := &Options{TsSrc: "wall", Buffer: 1, Man: true}
	require.NoError(t, o.Validate(nil))
}
