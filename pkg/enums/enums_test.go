package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{in: "COD", want: PaymentMethodCOD},
		{in: "stripe", want: PaymentMethodStripe},
		{in: " Stripe ", want: PaymentMethodStripe},
		{in: "cash", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePaymentMethod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParsePaymentMethod(%q) = %q, %v", tt.in, got, err)
		}
	}
	if PaymentMethodCOD.IsElectronic() || !PaymentMethodStripe.IsElectronic() {
		t.Fatalf("unexpected IsElectronic result")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, status := range validOrderStatuses {
		want := status == OrderStatusDelivered || status == OrderStatusCancelled
		if status.IsTerminal() != want {
			t.Fatalf("status %s terminal=%v", status, status.IsTerminal())
		}
	}
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}

func TestStoreStatusAndRoleValidity(t *testing.T) {
	if !StoreStatusApproved.IsValid() || StoreStatus("archived").IsValid() {
		t.Fatalf("unexpected store status validity")
	}
	if role, err := ParseUserRole("admin"); err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin role, got %q %v", role, err)
	}
	if UserRole("owner").IsValid() {
		t.Fatalf("owner is not a system role")
	}
}
