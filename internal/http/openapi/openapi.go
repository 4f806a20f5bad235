// Package openapi embeds the API description served at /openapi.yaml.
package openapi

// YAML is the OpenAPI document for the service.
var YAML = []byte(`openapi: 3.0.3
info:
  title: POS Checkout Service
  description: >
    Point-of-sale scan/checkout API. Scans accumulate into a per-register
    session; finish-scan commits an atomic inventory-decrementing checkout,
    cancel-scan drops the session without touching inventory.
  version: "1.0.0"
paths:
  /products/scan:
    post:
      summary: Stage scanned items into the register's session
      parameters:
        - $ref: '#/components/parameters/RegisterId'
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/ScanRequest'
      responses:
        '200':
          description: Current session contents after the merge
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/SessionResponse'
        '400': { description: Validation error }
        '404': { description: Unknown barcode; session unchanged }
  /products/finish-scan:
    post:
      summary: Commit the staged session as one atomic checkout
      parameters:
        - $ref: '#/components/parameters/RegisterId'
      responses:
        '200':
          description: Receipt with per-line totals and the total price
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Receipt'
        '409': { description: Empty session or insufficient stock; nothing changed }
        '503': { description: Catalog unavailable; session preserved, retry }
  /products/cancel-scan:
    post:
      summary: Drop the staged session without touching inventory
      parameters:
        - $ref: '#/components/parameters/RegisterId'
      responses:
        '200': { description: The abandoned entries }
        '409': { description: Empty session }
  /products:
    get:
      summary: List live products
      responses:
        '200': { description: Product list }
    post:
      summary: Create a product
      responses:
        '201': { description: Created product }
        '400': { description: Validation error }
  /products/{barcode}:
    get:
      summary: Fetch a product by barcode
      responses:
        '200': { description: Product }
        '404': { description: Unknown or deleted barcode }
    delete:
      summary: Soft-delete a product
      responses:
        '200': { description: Deleted }
        '404': { description: Unknown or deleted barcode }
  /products/{barcode}/stock:
    put:
      summary: Replace the on-hand quantity
      responses:
        '200': { description: Updated product }
  /sales/recent:
    get:
      summary: Recent checkout and cancellation journal events, newest first
      responses:
        '200': { description: Journal events }
  /healthz:
    get:
      summary: Liveness probe
      responses:
        '200': { description: OK }
components:
  parameters:
    RegisterId:
      name: X-Register-Id
      in: header
      required: false
      schema: { type: string, default: default }
      description: Register identity scoping the scan session.
  schemas:
    ScanRequest:
      type: object
      required: [items]
      properties:
        items:
          type: array
          items:
            type: object
            required: [barcode, quantity]
            properties:
              barcode: { type: string }
              quantity: { type: integer, minimum: 1 }
    SessionResponse:
      type: object
      properties:
        register_id: { type: string }
        state: { type: string, enum: [idle, scanning] }
        entries:
          type: array
          items:
            type: object
            properties:
              barcode: { type: string }
              name: { type: string }
              quantity: { type: integer }
    Receipt:
      type: object
      properties:
        id: { type: string }
        register_id: { type: string }
        lines:
          type: array
          items:
            type: object
            properties:
              product: { type: object }
              quantity: { type: integer }
              line_total: { type: string }
        total_price: { type: string }
        is_finished: { type: boolean }
        created_at: { type: string, format: date-time }
`)
