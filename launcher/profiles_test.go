package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		command   string
		wantName  string
		wantPorts map[string]int
	}{
		{command: "python manage.py runserver", wantName: "django-dev", wantPorts: map[string]int{"main": 8000}},
		{command: "npx next dev", wantName: "nextjs-dev", wantPorts: map[string]int{"main": 3000, "hmr": 3001}},
		{command: "npx vite --host", wantName: "vite-dev", wantPorts: map[string]int{"main": 5173, "hmr": 5174}},
		{command: "npx react-scripts start", wantName: "cra-dev", wantPorts: map[string]int{"main": 3000}},
		{command: "bin/rails server", wantName: "rails-dev", wantPorts: map[string]int{"main": 3000}},
		{command: "uvicorn app:main --reload", wantName: "fastapi", wantPorts: map[string]int{"main": 8000}},
		{command: "flask run", wantName: "flask-dev", wantPorts: map[string]int{"main": 5000}},
		{command: "python platform_manager.py", wantName: "platform-manager", wantPorts: map[string]int{"main": 8000, "auth": 8001, "rbac": 8002, "testapp": 8003}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			profile, ok := DetectProfile(tt.command)
			assert.True(t, ok)
			assert.Equal(t, tt.wantName, profile.Name)
			assert.Equal(t, hints(tt.wantPorts), profile.Ports)
		})
	}
}

func TestDetectProfilePlatformManagerEnv(t *testing.T) {
	profile, ok := DetectProfile("python platform_manager.py --all")
	assert.True(t, ok)
	assert.Equal(t, "8001", profile.Env["AUTH_SERVICE_PORT"])
}

func TestDetectProfileUnknown(t *testing.T) {
	_, ok := DetectProfile("./my-server --listen")
	assert.False(t, ok)
}
