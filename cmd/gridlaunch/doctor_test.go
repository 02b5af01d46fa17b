package main

import (
	"testing"

	"github.com/kioskware/gridlaunch/internal/doctor"
	"github.com/kioskware/gridlaunch/internal/testutil"
)

func TestDoctorOutput_AllPass_Golden(t *testing.T) {
	out, buf := testWriter()

	renderDoctor(out, []doctor.Result{
		{Name: "Terminal", Status: doctor.StatusPass, Message: "linux (80x25)"},
		{Name: "Entries", Status: doctor.StatusPass, Message: "4 loaded from /etc/gridlaunch/entries.yaml"},
		{Name: "Input devices", Status: doctor.StatusPass, Message: "1 gamepads, 1 keyboards, 0 pointers"},
	})

	testutil.AssertGolden(t, buf.String(), "doctor_all_pass.golden")
}

func TestDoctorOutput_Mixed_Golden(t *testing.T) {
	out, buf := testWriter()

	renderDoctor(out, []doctor.Result{
		{Name: "Terminal", Status: doctor.StatusPass, Message: "linux (80x25)"},
		{Name: "Kill triggers", Status: doctor.StatusWarn, Message: "1 of 1 killable entries cannot be stopped",
			Detail: "RetroArch uses keyboard:f12 but input.keyboard is off"},
		{Name: "Input devices", Status: doctor.StatusFail, Message: "Cannot read /dev/input",
			Detail: "Add the kiosk user to the 'input' group: permission denied"},
	})

	testutil.AssertGolden(t, buf.String(), "doctor_mixed.golden")
}
