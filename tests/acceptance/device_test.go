package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/dto"
)

type deviceListResponse struct {
	Devices []domain.Device `json:"devices"`
}

func (s *Suite) listDevices(client *http.Client) []domain.Device {
	resp := s.doJSON(client, http.MethodGet, "/api/v1/me/devices", nil)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list deviceListResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&list))
	return list.Devices
}

func (s *Suite) TestDevices_AddAndList() {
	client := s.newClient()
	s.register(client, "devices@example.com")

	resp := s.postJSON(client, "/api/v1/me/devices", dto.AddDeviceRequest{
		DeviceID:   "device-2",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	var added domain.Device
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&added))
	s.False(added.Trusted, "Explicitly added devices start provisional")

	devices := s.listDevices(client)
	s.Require().Len(devices, 2)
	s.Equal("device-1", devices[0].DeviceID)
	s.Equal("device-2", devices[1].DeviceID)

	// Duplicate device id is a conflict
	dupResp := s.postJSON(client, "/api/v1/me/devices", dto.AddDeviceRequest{
		DeviceID:   "device-2",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	dupResp.Body.Close()
	s.Equal(http.StatusConflict, dupResp.StatusCode)
}

func (s *Suite) TestDevices_RemoveIsIdempotent() {
	client := s.newClient()
	s.register(client, "remove@example.com")

	for i := 0; i < 2; i++ {
		resp := s.doJSON(client, http.MethodDelete, "/api/v1/me/devices/device-1", nil)
		resp.Body.Close()
		s.Equal(http.StatusOK, resp.StatusCode)
	}

	s.Empty(s.listDevices(client))
}

func (s *Suite) TestDevices_TouchLogin() {
	client := s.newClient()
	s.register(client, "touch@example.com")

	resp := s.postJSON(client, "/api/v1/me/devices/device-1/last-login", dto.TouchLoginRequest{
		DeviceLocation: &dto.LocationPayload{Country: "Germany", Continent: "Europe"},
	})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	devices := s.listDevices(client)
	s.Require().Len(devices, 1)
	s.Require().NotNil(devices[0].Location)
	s.Equal("Germany", devices[0].Location.Country)

	// An unseen device id is appended provisionally
	resp = s.postJSON(client, "/api/v1/me/devices/device-9/last-login", dto.TouchLoginRequest{})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	devices = s.listDevices(client)
	s.Require().Len(devices, 2)
	s.False(devices[1].Trusted)
}

func (s *Suite) TestDevices_ActivationFlow() {
	client := s.newClient()
	account := s.register(client, "activate@example.com")
	s.Mailer.Reset()

	addResp := s.postJSON(client, "/api/v1/me/devices", dto.AddDeviceRequest{
		DeviceID:   "device-2",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	addResp.Body.Close()
	s.Require().Equal(http.StatusCreated, addResp.StatusCode)

	resp := s.postJSON(client, "/api/v1/me/devices/device-2/request-activation", nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The mail carries a link with the 64-char lowercase token
	sent := s.Mailer.Sent()
	s.Require().Len(sent, 1)
	s.Equal("activate@example.com", sent[0].To)

	token := s.tokenValue(account.ID, "activate-device")
	s.Len(token, 64)
	s.Contains(sent[0].Body, token)

	// The activation link works without a session
	activateURL := fmt.Sprintf("/api/v1/devices/activate?email=%s&deviceId=device-2&token=%s",
		url.QueryEscape("activate@example.com"), token)
	actResp := s.doJSON(s.newClient(), http.MethodGet, activateURL, nil)
	actResp.Body.Close()
	s.Equal(http.StatusOK, actResp.StatusCode)

	devices := s.listDevices(client)
	s.Require().Len(devices, 2)
	s.True(devices[1].Trusted)

	// The token was consumed with the trust flip; the link is dead now
	replayResp := s.doJSON(s.newClient(), http.MethodGet, activateURL, nil)
	replayResp.Body.Close()
	s.Equal(http.StatusNotFound, replayResp.StatusCode)
}

func (s *Suite) TestDevices_ActivationWrongDevice() {
	client := s.newClient()
	account := s.register(client, "wrongdevice@example.com")

	for _, id := range []string{"device-2", "device-3"} {
		resp := s.postJSON(client, "/api/v1/me/devices", dto.AddDeviceRequest{
			DeviceID:   id,
			DeviceName: "Phone",
			DeviceType: "mobile",
		})
		resp.Body.Close()
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
	}

	resp := s.postJSON(client, "/api/v1/me/devices/device-2/request-activation", nil)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	token := s.tokenValue(account.ID, "activate-device")

	// The token is scoped to device-2 and cannot activate device-3
	activateURL := fmt.Sprintf("/api/v1/devices/activate?email=%s&deviceId=device-3&token=%s",
		url.QueryEscape("wrongdevice@example.com"), token)
	actResp := s.doJSON(s.newClient(), http.MethodGet, activateURL, nil)
	actResp.Body.Close()
	s.Equal(http.StatusNotFound, actResp.StatusCode)

	devices := s.listDevices(client)
	for _, d := range devices[1:] {
		s.False(d.Trusted)
	}
}

func (s *Suite) TestDevices_ActivationMalformedLink() {
	resp := s.doJSON(s.newClient(), http.MethodGet, "/api/v1/devices/activate?email=someone@example.com", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestDevices_RequestActivationUnknownDevice() {
	client := s.newClient()
	s.register(client, "unknowndevice@example.com")

	resp := s.postJSON(client, "/api/v1/me/devices/never-seen/request-activation", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
