package web

import "html/template"

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Checkout</title>
</head>
<body>
<div class="checkout-container">
{{if .AwaitingPayment}}
  <form method="post" action="/payment" class="checkout-form">
    <h2 data-test-id="payment-title">Complete Payment</h2>
    <p>Order ID: <span data-test-id="order-id">{{.OrderID}}</span></p>

    <div class="form-group">
      <label for="paymentMethod">Payment Method</label>
      <select id="paymentMethod" name="paymentMethod" data-test-id="payment-method-select">
        <option value="UPI" selected>UPI</option>
        <option value="CARD">Card</option>
      </select>
    </div>

    <fieldset class="form-group">
      <legend>UPI</legend>
      <label for="upiId">UPI ID</label>
      <input id="upiId" name="upiId" type="text" placeholder="user@upi" data-test-id="upi-id-input">
    </fieldset>

    <fieldset class="form-group">
      <legend>Card</legend>
      <label for="cardNumber">Card Number</label>
      <input id="cardNumber" name="cardNumber" type="text" placeholder="1234 5678 9012 3456" data-test-id="card-number-input">
      <label for="cardExpiry">Expiry (MM/YY)</label>
      <input id="cardExpiry" name="cardExpiry" type="text" placeholder="12/25" data-test-id="card-expiry-input">
      <label for="cardCvv">CVV</label>
      <input id="cardCvv" name="cardCvv" type="text" placeholder="123" data-test-id="card-cvv-input">
    </fieldset>

    <button type="submit" {{if .Loading}}disabled{{end}} data-test-id="pay-button">{{if .Loading}}Processing...{{else}}Pay{{end}}</button>
  </form>
{{else}}
  <form method="post" action="/order" class="checkout-form">
    <h2 data-test-id="checkout-title">Create Payment Order</h2>

    <div class="form-group">
      <label for="amount">Amount</label>
      <input id="amount" name="amount" type="number" step="0.01" required data-test-id="amount-input">
    </div>

    <div class="form-group">
      <label for="currency">Currency</label>
      <select id="currency" name="currency" data-test-id="currency-select">
      {{range .Currencies}}<option value="{{.}}">{{.}}</option>{{end}}
      </select>
    </div>

    <button type="submit" {{if .Loading}}disabled{{end}} data-test-id="create-order-button">{{if .Loading}}Creating...{{else}}Create Order{{end}}</button>
  </form>
{{end}}
{{with .Error}}<div class="error-message" data-test-id="error-message">{{.}}</div>{{end}}
{{with .Success}}<div class="success-message" data-test-id="success-message">{{.}}</div>{{end}}
</div>
</body>
</html>
`))
